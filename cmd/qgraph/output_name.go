package main

import (
	"path/filepath"
	"strings"
)

// derivedOutputPath names the result of a pass next to its input:
// model.qgm -> model.<tag>.qgm.
func derivedOutputPath(inputPath, tag string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "." + tag + ext
}
