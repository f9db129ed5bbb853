// Package presence drives the rich-presence lifecycle for the game client:
// one connection attempt at startup, activity updates on host events and a
// clear-and-close on shutdown.
package presence

import (
	"time"

	"github.com/voxellabs/voxel-presence/internal/icon"
	"github.com/voxellabs/voxel-presence/internal/tasks"
)

const (
	DefaultClientID     = "1477696449419546725"
	DefaultRealmsSuffix = ".realms.minecraft.net"
)

// Config names the application and the uploaded art assets.
type Config struct {
	ClientID    string
	ProductName string
	ProductText string

	LogoAsset         string
	SingleplayerAsset string
	ServerAsset       string
	RealmsAsset       string

	// RealmsSuffix marks joins that go to managed hosting.
	RealmsSuffix string

	IconEndpoint string
	IconTimeout  time.Duration
	MaxTasks     int64
}

func DefaultConfig() Config {
	return Config{
		ClientID:          DefaultClientID,
		ProductName:       "VoxelClient",
		ProductText:       "VoxelClient – Fabric 1.21.4",
		LogoAsset:         "logo",
		SingleplayerAsset: "singleplayer",
		ServerAsset:       "server",
		RealmsAsset:       "realms",
		RealmsSuffix:      DefaultRealmsSuffix,
		IconEndpoint:      icon.DefaultEndpoint,
		IconTimeout:       icon.DefaultTimeout,
		MaxTasks:          tasks.DefaultLimit,
	}
}
