package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ownck/internal/program"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
	maxFuzzInput = 256 << 10
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addSampleSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.own.toml файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !strings.HasSuffix(path, program.Ext) {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// addSampleSeeds adds the starter program, whole and one function at a time.
func addSampleSeeds(f *testing.F) {
	doc := program.Sample()
	var buf bytes.Buffer
	if err := program.Encode(&buf, doc); err == nil {
		f.Add(clampSeed(buf.Bytes()))
	}
	for _, fd := range doc.Functions {
		buf.Reset()
		if err := program.Encode(&buf, program.Document{Functions: []program.FunctionDoc{fd}}); err == nil {
			f.Add(clampSeed(buf.Bytes()))
		}
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
