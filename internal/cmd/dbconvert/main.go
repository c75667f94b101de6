// Command dbconvert compiles DragonBones JSON skeleton documents into their
// packed binary form, together with any texture atlas descriptors that
// belong to them.
//
// Usage:
//
//	dbconvert -ske hero_ske.json -tex hero_tex.json -o hero.dbbin
//	dbconvert -manifest batch.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BlizzedRu/dragonbones"
	"github.com/BlizzedRu/dragonbones/pool"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// A manifest batches several conversions into one run.
type manifest struct {
	Entries []job `yaml:"entries"`
}

type job struct {
	Ske string   `yaml:"ske"`
	Tex []string `yaml:"tex"`
	Out string   `yaml:"out"`
}

func loadManifest(path string) ([]job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m.Entries, nil
}

func main() {
	var (
		ske          string
		tex          stringList
		out          string
		scale        float64
		manifestPath string
		verbose      bool
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-v] [-scale <n>] -ske <file> [-tex <file>]... [-o <file>]\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "       %s [-v] [-scale <n>] -manifest <file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&ske, "ske", "", "Path to the skeleton `document`")
	flag.Var(&tex, "tex", "Path to a texture atlas `document`, repeatable")
	flag.StringVar(&out, "o", "", "Output `file`, defaults to the input with a .dbbin extension")
	flag.Float64Var(&scale, "scale", 1, "Scale applied to every length in the document")
	flag.StringVar(&manifestPath, "manifest", "", "YAML `file` listing conversions to run as a batch")
	flag.BoolVar(&verbose, "v", false, "Be verbose")
	flag.Parse()

	if len(flag.Args()) != 0 || (ske == "") == (manifestPath == "") {
		flag.Usage()
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	jobs := []job{{Ske: ske, Tex: tex, Out: out}}
	if manifestPath != "" {
		var err error
		jobs, err = loadManifest(manifestPath)
		if err != nil {
			logger.Error().Err(err).Msg("manifest")
			os.Exit(1)
		}
	}

	shared := pool.New()
	compiler := dragonbones.New(dragonbones.Options{Logger: &logger, Pool: shared})

	failed := 0
	for _, j := range jobs {
		if err := convert(compiler, logger, j, scale); err != nil {
			logger.Error().Err(err).Str("ske", j.Ske).Msg("convert")
			failed++
		}
	}
	if verbose {
		logger.Debug().Int("borrowed", shared.Borrowed()).Int("idle", shared.Idle()).Msg("pool")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func convert(compiler *dragonbones.Compiler, logger zerolog.Logger, j job, scale float64) error {
	src, err := os.ReadFile(j.Ske)
	if err != nil {
		return err
	}
	data, err := compiler.ParseBytes(src, scale)
	if err != nil {
		return err
	}
	if data == nil {
		// Pre-4.0 export; not an error, the rest of the batch still runs.
		logger.Warn().Str("ske", j.Ske).Msg("unsupported data version, skipped")
		return nil
	}

	out := j.Out
	if out == "" {
		out = strings.TrimSuffix(j.Ske, filepath.Ext(j.Ske)) + ".dbbin"
	}
	if err := os.WriteFile(out, data.Binary, 0666); err != nil {
		return err
	}

	animations := 0
	for _, name := range data.ArmatureNames {
		animations += len(data.Armature(name).AnimationNames)
	}
	fmt.Printf("%s: %d armatures, %d animations -> %s (%d bytes)\n",
		j.Ske, len(data.ArmatureNames), animations, out, len(data.Binary))
	fmt.Printf("  int %dB  float %dB  frameInt %dB  frameFloat %dB  frame %dB  timeline %dB  color %dB\n",
		len(data.IntArray)*2, len(data.FloatArray)*4,
		len(data.FrameIntArray)*2, len(data.FrameFloatArray)*4,
		len(data.FrameArray)*2, len(data.TimelineArray)*2, len(data.ColorArray)*2)

	// Atlases embedded in the skeleton document come first, then the
	// standalone descriptor files. Atlas documents keep their own scale.
	for {
		atlas, err := compiler.NextTextureAtlas(0)
		if err != nil {
			return err
		}
		if atlas == nil {
			break
		}
		fmt.Printf("  atlas %s: %d textures (embedded)\n", atlas.Name, atlas.TextureCount())
	}
	for _, path := range j.Tex {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		atlas, err := compiler.ParseTextureAtlasBytes(src, 0)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("  atlas %s: %d textures (%s -> %s)\n", atlas.Name, atlas.TextureCount(), path, atlas.ImagePath)
	}

	return nil
}
