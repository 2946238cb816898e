// Command b2dsim runs a scene headless and reports how it went.
package main

import (
	"flag"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	. "github.com/jakecoffman/b2d"
)

func main() {
	config := flag.String("config", "", "YAML settings file, defaults are used for missing keys")
	steps := flag.Int("steps", 600, "number of steps to run")
	scene := flag.String("scene", "pyramid", "scene to run: "+strings.Join(sceneNames(), ", "))
	out := flag.String("out", "", "write a snapshot of the final state to this file")
	dumpConfig := flag.Bool("dump-config", false, "print the effective settings as YAML and exit")
	flag.Parse()

	settings := DefaultSettings()
	if *config != "" {
		var err error
		settings, err = LoadSettingsFile(*config)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *dumpConfig {
		if err := settings.WriteYAML(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	build, ok := scenes[*scene]
	if !ok {
		log.Fatalf("Unknown scene %q, want one of %s", *scene, strings.Join(sceneNames(), ", "))
	}

	world := NewWorldWithSettings(settings)
	update := build(world)

	dt := 1 / settings.Hz
	start := time.Now()
	for i := 0; i < *steps; i++ {
		update(world, dt)
	}
	elapsed := time.Since(start)

	awake := 0
	world.EachBody(func(body *Body) {
		if body.Type() != BODY_STATIC && !body.IsSleeping() {
			awake++
		}
	})
	log.Printf("%s: %d steps in %v (%v per step)", *scene, *steps, elapsed, elapsed/time.Duration(max(*steps, 1)))
	log.Printf("%d bodies (%d awake), %d contacts, %d joints",
		world.BodyCount(), awake, world.ContactCount(), world.JointCount())

	if *out != "" {
		if err := writeSnapshot(world, *out); err != nil {
			log.Fatal(err)
		}
		log.Println("Wrote snapshot to", *out)
	}
}

func writeSnapshot(world *World, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Capture(world).Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sceneNames() []string {
	return slices.Sorted(maps.Keys(scenes))
}
