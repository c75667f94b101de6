package dragonbones

import (
	"github.com/BlizzedRu/dragonbones/model"
	"github.com/BlizzedRu/dragonbones/pool"
)

// actionFrame collects the actions of every timeline that fire on the same
// tick, as indices into the armature's action list. The merged frames become
// the animation's single action timeline.
type actionFrame struct {
	frameStart int
	actions    []int
}

// parseActionData accepts both the shorthand form, a bare animation name,
// and the full form, a list of action records.
func (c *Compiler) parseActionData(raw any, actionType model.ActionType, bone *model.BoneData, slot *model.SlotData) []*model.ActionData {
	var actions []*model.ActionData

	switch raw := raw.(type) {
	case string:
		action := pool.Borrow[model.ActionData](c.pool)
		action.Type = actionType
		action.Name = raw
		action.Bone = bone
		action.Slot = slot
		actions = append(actions, action)

	case []any:
		for _, entry := range raw {
			rawAction, ok := entry.(map[string]any)
			if !ok {
				c.failShape("actions")
				continue
			}
			action := pool.Borrow[model.ActionData](c.pool)

			if _, ok := rawAction["gotoAndPlay"]; ok {
				action.Type = model.ActionPlay
				action.Name = getString(rawAction, "gotoAndPlay", "")
			} else {
				if value, ok := rawAction["type"].(string); ok {
					action.Type = model.ParseActionType(value)
				} else {
					action.Type = model.ActionType(getInt(rawAction, "type", int(actionType)))
				}
				action.Name = getString(rawAction, "name", "")
			}

			if _, ok := rawAction["bone"]; ok {
				action.Bone = c.armature.Bone(getString(rawAction, "bone", ""))
			} else {
				action.Bone = bone
			}

			if _, ok := rawAction["slot"]; ok {
				action.Slot = c.armature.Slot(getString(rawAction, "slot", ""))
			} else {
				action.Slot = slot
			}

			var userData *model.UserData
			if _, ok := rawAction["ints"]; ok {
				userData = pool.Borrow[model.UserData](c.pool)
				for _, v := range c.numbersIn(rawAction, "ints") {
					userData.Ints = append(userData.Ints, int(v))
				}
			}
			if _, ok := rawAction["floats"]; ok {
				if userData == nil {
					userData = pool.Borrow[model.UserData](c.pool)
				}
				userData.Floats = append(userData.Floats, c.numbersIn(rawAction, "floats")...)
			}
			if _, ok := rawAction["strings"]; ok {
				if userData == nil {
					userData = pool.Borrow[model.UserData](c.pool)
				}
				userData.Strings = append(userData.Strings, c.stringsIn(rawAction, "strings")...)
			}
			action.Data = userData

			actions = append(actions, action)
		}
	}

	return actions
}

// parseActionDataInFrame gathers every action key a frame record may carry.
func (c *Compiler) parseActionDataInFrame(raw map[string]any, frameStart int, bone *model.BoneData, slot *model.SlotData) {
	if value, ok := raw["event"]; ok {
		c.mergeActionFrame(value, frameStart, model.ActionFrame, bone, slot)
	}
	if value, ok := raw["sound"]; ok {
		c.mergeActionFrame(value, frameStart, model.ActionSound, bone, slot)
	}
	if value, ok := raw["action"]; ok {
		c.mergeActionFrame(value, frameStart, model.ActionPlay, bone, slot)
	}
	if value, ok := raw["events"]; ok {
		c.mergeActionFrame(value, frameStart, model.ActionFrame, bone, slot)
	}
	if value, ok := raw["actions"]; ok {
		c.mergeActionFrame(value, frameStart, model.ActionPlay, bone, slot)
	}
}

// mergeActionFrame adds raw's actions to the armature and records their
// indices on the action frame for frameStart, keeping the frame list sorted
// by start tick. Tick 0 always has a frame so the timeline starts at the
// animation's first tick.
func (c *Compiler) mergeActionFrame(raw any, frameStart int, actionType model.ActionType, bone *model.BoneData, slot *model.SlotData) {
	actionOffset := len(c.armature.Actions)
	actions := c.parseActionData(raw, actionType, bone, slot)

	for _, action := range actions {
		c.armature.AddAction(action, false)
	}

	if len(c.actionFrames) == 0 {
		c.actionFrames = append(c.actionFrames, &actionFrame{})
	}

	var frame *actionFrame
	frameIndex := 0
	for _, each := range c.actionFrames {
		if each.frameStart == frameStart {
			frame = each
			break
		} else if each.frameStart > frameStart {
			break
		}
		frameIndex++
	}

	if frame == nil {
		frame = &actionFrame{frameStart: frameStart}
		c.actionFrames = append(c.actionFrames, nil)
		copy(c.actionFrames[frameIndex+1:], c.actionFrames[frameIndex:])
		c.actionFrames[frameIndex] = frame
	}

	for i := range actions {
		frame.actions = append(frame.actions, actionOffset+i)
	}
}
