package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gridtrace/internal/config"
)

// Discover expands the command-line arguments into recordings. A file is
// taken as is. A directory contributes the video files it contains, or is
// itself one recording of still frames when it holds no videos.
func Discover(cfg *config.Config, args []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("recording %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		var videos []string
		for _, entry := range entries {
			if !entry.IsDir() && cfg.IsVideoFile(entry.Name()) {
				videos = append(videos, filepath.Join(path, entry.Name()))
			}
		}
		if len(videos) == 0 {
			add(path)
			continue
		}
		slices.Sort(videos)
		for _, v := range videos {
			add(v)
		}
	}
	return out, nil
}
