package backgrounds

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/forPelevin/ayatreel/internal/types"
)

var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// Library picks background clips from a directory.
type Library struct {
	dir   string
	files []string

	mu  sync.Mutex
	rng *rand.Rand
}

// Open scans dir (not recursively) for video files. An empty library is not an
// error here; Pick reports it.
func Open(dir string, seed int64) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(types.ErrNotFound, "backgrounds dir %s", dir)
		}
		return nil, errors.Wrap(err, "read backgrounds dir")
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if videoExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return &Library{dir: dir, files: files, rng: rand.New(rand.NewSource(seed))}, nil
}

func (l *Library) Len() int { return len(l.files) }

func (l *Library) Files() []string { return append([]string(nil), l.files...) }

// Pick returns a random clip. The sequence is fixed for a given seed.
func (l *Library) Pick() (string, error) {
	if len(l.files) == 0 {
		return "", errors.Wrapf(types.ErrNotFound, "no background videos in %s", l.dir)
	}
	l.mu.Lock()
	i := l.rng.Intn(len(l.files))
	l.mu.Unlock()
	return l.files[i], nil
}
