package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BoardStatus describes one column seeded into a newly created workflow.
type BoardStatus struct {
	Name       string `mapstructure:"name"`
	Slug       string `mapstructure:"slug"`
	Order      int    `mapstructure:"order"`
	IsStart    bool   `mapstructure:"isStart"`
	IsTerminal bool   `mapstructure:"isTerminal"`
	Color      string `mapstructure:"color"`
}

// BoardConfig is the status set provisioned into every new workflow.
// Transitions are always the complete graph over these statuses.
type BoardConfig struct {
	Statuses []BoardStatus `mapstructure:"statuses"`
}

// DefaultBoardConfig returns the canonical five-column kanban board.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Statuses: []BoardStatus{
			{Name: "Backlog", Slug: "backlog", Order: 1, IsStart: true, Color: "#6B7280"},
			{Name: "To Do", Slug: "to-do", Order: 2, Color: "#3B82F6"},
			{Name: "In Progress", Slug: "in-progress", Order: 3, Color: "#F59E0B"},
			{Name: "Review", Slug: "review", Order: 4, Color: "#8B5CF6"},
			{Name: "Done", Slug: "done", Order: 5, IsTerminal: true, Color: "#10B981"},
		},
	}
}

// BoardConfigHolder serves the current board defaults and hot-reloads them
// when the backing file changes.
type BoardConfigHolder struct {
	current atomic.Value // holds BoardConfig
}

func NewBoardConfigHolder() (*BoardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("board")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/tms")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &BoardConfigHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultBoardConfig())
		return holder, nil
	}

	var cfg BoardConfig
	if err := v.UnmarshalKey("board", &cfg); err != nil {
		return nil, err
	}
	if err := validateBoardConfig(cfg); err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BoardConfig
		if err := v.UnmarshalKey("board", &updated); err != nil {
			log.Printf("[board-config] reload failed: %v", err)
			return
		}
		if err := validateBoardConfig(updated); err != nil {
			log.Printf("[board-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[board-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BoardConfigHolder) Get() BoardConfig {
	return h.current.Load().(BoardConfig)
}

// NewStaticBoardConfigHolder wraps a fixed config without file watching.
// Used by tests and tools that do not read board.yml.
func NewStaticBoardConfigHolder(cfg BoardConfig) *BoardConfigHolder {
	holder := &BoardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateBoardConfig(cfg BoardConfig) error {
	if len(cfg.Statuses) == 0 {
		return errors.New("board.statuses cannot be empty")
	}
	starts, terminals := 0, 0
	seen := map[string]struct{}{}
	for _, s := range cfg.Statuses {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Slug) == "" {
			return errors.New("board.statuses entries need name and slug")
		}
		if _, dup := seen[s.Slug]; dup {
			return errors.New("board.statuses slugs must be unique")
		}
		seen[s.Slug] = struct{}{}
		if s.IsStart {
			starts++
		}
		if s.IsTerminal {
			terminals++
		}
	}
	if starts > 1 || terminals > 1 {
		return errors.New("board.statuses allows at most one start and one terminal status")
	}
	return nil
}
