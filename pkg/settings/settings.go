package settings

import (
	"os"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// ServerSettings are the runtime-tunable knobs, loaded from the settings file
// and overridable with HEARTH_ environment variables.
type ServerSettings struct {
	ScannerParseSubtitles        bool `koanf:"scanner_parse_subtitles" default:"false"`
	ScannerPreferSidecarMetadata bool `koanf:"scanner_prefer_sidecar_metadata" default:"true"`
	MaxConcurrentScans           int  `koanf:"max_concurrent_scans" default:"1" validate:"min=1"`
	WatcherDebounceMs            int  `koanf:"watcher_debounce_ms" default:"2000" validate:"min=0"`
}

// Service holds the current settings and fans out changes to subscribers.
type Service struct {
	filePath string
	validate *validator.Validate

	mu      sync.RWMutex
	current ServerSettings
	subs    []chan ServerSettings
}

// Load reads the settings file, applies defaults and env overrides, and
// validates the result. A missing file is fine; defaults and env apply.
func Load(filePath string) (*Service, error) {
	s := ServerSettings{}
	if err := defaults.Set(&s); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")
	if filePath != "" {
		if _, err := os.Stat(filePath); err == nil {
			if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
				return nil, errors.WithStack(err)
			}
		}
	}
	err := k.Load(env.Provider("HEARTH_", ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, "HEARTH_"))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := k.Unmarshal("", &s); err != nil {
		return nil, errors.WithStack(err)
	}

	validate := validator.New()
	if err := validate.Struct(&s); err != nil {
		return nil, errors.WithStack(err)
	}

	return &Service{
		filePath: filePath,
		validate: validate,
		current:  s,
	}, nil
}

// Get returns a copy of the current settings.
func (svc *Service) Get() ServerSettings {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.current
}

// Update applies fn to a copy of the current settings, validates, swaps it
// in, and notifies subscribers. Failed validation leaves the settings as they
// were.
func (svc *Service) Update(fn func(*ServerSettings)) error {
	svc.mu.Lock()
	next := svc.current
	fn(&next)
	if err := svc.validate.Struct(&next); err != nil {
		svc.mu.Unlock()
		return errors.WithStack(err)
	}
	svc.current = next
	subs := make([]chan ServerSettings, len(svc.subs))
	copy(subs, svc.subs)
	svc.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- next:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel receiving each settings update. Slow receivers
// miss intermediate updates rather than blocking the updater.
func (svc *Service) Subscribe() <-chan ServerSettings {
	ch := make(chan ServerSettings, 1)
	svc.mu.Lock()
	svc.subs = append(svc.subs, ch)
	svc.mu.Unlock()
	return ch
}

// Save writes the current settings back to the settings file.
func (svc *Service) Save() error {
	if svc.filePath == "" {
		return nil
	}

	s := svc.Get()
	data, err := yaml.Parser().Marshal(map[string]interface{}{
		"scanner_parse_subtitles":         s.ScannerParseSubtitles,
		"scanner_prefer_sidecar_metadata": s.ScannerPreferSidecarMetadata,
		"max_concurrent_scans":            s.MaxConcurrentScans,
		"watcher_debounce_ms":             s.WatcherDebounceMs,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(svc.filePath, data, 0644)) //nolint:gosec
}
