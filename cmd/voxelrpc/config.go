package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/voxellabs/voxel-presence/internal/logging"
	"github.com/voxellabs/voxel-presence/presence"
)

type fileConfig struct {
	ClientID     string `toml:"client_id"`
	ProductName  string `toml:"product_name"`
	ProductText  string `toml:"product_text"`
	RealmsSuffix string `toml:"realms_suffix"`
	MaxTasks     int64  `toml:"max_tasks"`

	Assets struct {
		Logo         string `toml:"logo"`
		Singleplayer string `toml:"singleplayer"`
		Server       string `toml:"server"`
		Realms       string `toml:"realms"`
	} `toml:"assets"`

	Icons struct {
		Endpoint string `toml:"endpoint"`
		Timeout  string `toml:"timeout"`
	} `toml:"icons"`

	Log logging.Config `toml:"log"`
}

type appConfig struct {
	Presence presence.Config
	Log      logging.Config
}

func defaultAppConfig() appConfig {
	return appConfig{
		Presence: presence.DefaultConfig(),
		Log:      logging.DefaultConfig(),
	}
}

// loadConfig overlays the keys present in path onto the defaults.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return appConfig{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	p := &cfg.Presence
	setString(meta, "client_id", raw.ClientID, &p.ClientID)
	setString(meta, "product_name", raw.ProductName, &p.ProductName)
	setString(meta, "product_text", raw.ProductText, &p.ProductText)
	setString(meta, "realms_suffix", raw.RealmsSuffix, &p.RealmsSuffix)
	setString(meta, "assets.logo", raw.Assets.Logo, &p.LogoAsset)
	setString(meta, "assets.singleplayer", raw.Assets.Singleplayer, &p.SingleplayerAsset)
	setString(meta, "assets.server", raw.Assets.Server, &p.ServerAsset)
	setString(meta, "assets.realms", raw.Assets.Realms, &p.RealmsAsset)
	setString(meta, "icons.endpoint", raw.Icons.Endpoint, &p.IconEndpoint)

	if meta.IsDefined("max_tasks") {
		if raw.MaxTasks <= 0 {
			return appConfig{}, fmt.Errorf("max_tasks must be positive, got %d", raw.MaxTasks)
		}
		p.MaxTasks = raw.MaxTasks
	}

	if meta.IsDefined("icons", "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Icons.Timeout))
		if err != nil {
			return appConfig{}, fmt.Errorf("parse icons.timeout: %w", err)
		}
		if d <= 0 {
			return appConfig{}, fmt.Errorf("icons.timeout must be positive, got %s", d)
		}
		p.IconTimeout = d
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "file") {
		cfg.Log.File = strings.TrimSpace(raw.Log.File)
	}
	if meta.IsDefined("log", "console") {
		cfg.Log.Console = raw.Log.Console
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	if strings.TrimSpace(p.ClientID) == "" {
		return appConfig{}, fmt.Errorf("client_id must not be empty")
	}
	return cfg, nil
}

// setString assigns a trimmed value for a dotted key that the file defines.
func setString(meta toml.MetaData, key, value string, dst *string) {
	if !meta.IsDefined(strings.Split(key, ".")...) {
		return
	}
	*dst = strings.TrimSpace(value)
}
