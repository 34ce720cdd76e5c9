package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	jackExt = ".jack"
	vmExt   = ".vm"
	asmExt  = ".asm"
	hackExt = ".hack"
	xmlExt  = ".xml"
)

func removeExtension(filePath string) string {
	extension := filepath.Ext(filePath)
	return filePath[:len(filePath)-len(extension)]
}

func getClassName(filePath string) string {
	return removeExtension(filepath.Base(filePath))
}

// getOutputPath swaps the extension of filePath for ext. A non-empty outDir
// replaces the directory.
func getOutputPath(filePath, outDir, ext string) string {
	if outDir == "" {
		return removeExtension(filePath) + ext
	}
	return filepath.Join(outDir, getClassName(filePath)+ext)
}

// collectFiles lists fileOrDir itself or, for a directory, every file in it
// with extension ext, sorted by name.
func collectFiles(fileOrDir, ext string) (files []string, isDir bool, err error) {
	fileOrDirStat, err := os.Stat(fileOrDir)
	if err != nil {
		return nil, false, fmt.Errorf("cannot stat file/dir %q: %w", fileOrDir, err)
	}

	if !fileOrDirStat.IsDir() {
		if filepath.Ext(fileOrDir) != ext {
			return nil, false, fmt.Errorf("%q is not a %s file", fileOrDir, ext)
		}
		return []string{fileOrDir}, false, nil
	}

	dirEntries, err := os.ReadDir(fileOrDir)
	if err != nil {
		return nil, true, fmt.Errorf("could not open directory %q: %w", fileOrDir, err)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		files = append(files, filepath.Join(fileOrDir, entry.Name()))
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("no %s files in %q", ext, fileOrDir)
	}
	sort.Strings(files)
	return files, true, nil
}
