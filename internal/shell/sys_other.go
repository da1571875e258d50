//go:build unix && !linux

package shell

import (
	"fmt"
	"os"
	"time"
)

func readDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errOpenDir, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errReadDir, err)
	}
	return append([]string{".", ".."}, names...), nil
}

func sleepFor(d time.Duration) error {
	time.Sleep(d)
	return nil
}
