package cache

import (
	"fmt"

	"github.com/vijay-prabhu/inboxdomains/internal/config"
)

// Open returns the store selected by cfg.Backend
func Open(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendJSON, "":
		return NewFileStore(cfg.Path, nil), nil
	case config.BackendSQLite:
		s, err := OpenSQLite(cfg.Path, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendBolt:
		s, err := OpenBolt(cfg.Path, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
