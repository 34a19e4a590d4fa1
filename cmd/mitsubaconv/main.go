// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mitsubaconv parses a Mitsuba scene-description XML file and exports
// its triangle-mesh shapes as Wavefront OBJ/MTL (spec.md §6 "CLI surface
// (external collaborator)").
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scenekit/mitsuba-go/objexport"
	"github.com/scenekit/mitsuba-go/parser"
	"github.com/scenekit/mitsuba-go/util/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	input := flag.String("i", "", "input scene XML path")
	output := flag.String("o", "", "output OBJ path (a companion .mtl is written alongside it)")
	strict := flag.Bool("strict", false, "treat an unrecognized non-leaf element as a fatal error instead of skipping it")
	flag.StringVar(input, "input", "", "alias of -i")
	flag.StringVar(output, "output", "", "alias of -o")
	flag.Parse()

	log := logger.New("mitsubaconv", nil)
	log.AddWriter(logger.NewConsole(false))
	log.SetFormat(logger.FTIME)
	log.SetLevel(logger.INFO)

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: mitsubaconv -i scene.xml -o scene.obj")
		flag.PrintDefaults()
		return 1
	}

	sc, err := parser.ParseFile(*input, *strict)
	if err != nil {
		log.Error("parsing %s: %v", *input, err)
		return 1
	}
	log.Info("parsed %s: %d named shapes, %d anonymous shapes, %d sensors, %d emitters",
		*input, len(sc.NamedShapes), len(sc.AnonymousShapes), len(sc.Sensors), len(sc.Emitters))

	mtlPath := strings.TrimSuffix(*output, filepath.Ext(*output)) + ".mtl"

	objFile, err := os.Create(*output)
	if err != nil {
		log.Error("creating %s: %v", *output, err)
		return 1
	}
	defer objFile.Close()

	mtlFile, err := os.Create(mtlPath)
	if err != nil {
		log.Error("creating %s: %v", mtlPath, err)
		return 1
	}
	defer mtlFile.Close()

	fmt.Fprintf(objFile, "mtllib %s\n\n", filepath.Base(mtlPath))

	w := objexport.NewWriter(objFile, mtlFile, filepath.Dir(*input))
	w.SetLogger(log)
	if err := w.Export(sc); err != nil {
		log.Error("exporting %s: %v", *output, err)
		return 1
	}

	log.Info("wrote %s and %s", *output, mtlPath)
	return 0
}
