package presence

import (
	"time"

	"github.com/voxellabs/voxel-presence/client"
)

const (
	stateMainMenu     = "In main menu"
	unknownWorld      = "Unknown"
	defaultServerName = "Server"
	defaultRealmName  = "Realm"
	realmDetails      = "Managed Realm"
)

func MainMenuActivity(cfg Config, sessionStart time.Time) client.Activity {
	return client.Activity{
		Details: cfg.ProductName,
		State:   stateMainMenu,
		Assets: &client.Assets{
			LargeImage: cfg.LogoAsset,
			LargeText:  cfg.ProductText,
		},
		Timestamps: client.StartedAt(sessionStart),
	}
}

func SingleplayerActivity(cfg Config, world string, now time.Time) client.Activity {
	if world == "" {
		world = unknownWorld
	}
	return client.Activity{
		Details: "Singleplayer",
		State:   "World: " + world,
		Assets: &client.Assets{
			LargeImage: cfg.SingleplayerAsset,
			LargeText:  "Singleplayer",
			SmallImage: cfg.LogoAsset,
			SmallText:  cfg.ProductName,
		},
		Timestamps: client.StartedAt(now),
	}
}

// MultiplayerActivity uses iconURL as the large image when set, else the
// static server asset.
func MultiplayerActivity(cfg Config, name, address, iconURL string, now time.Time) client.Activity {
	if name == "" {
		name = defaultServerName
	}
	large := cfg.ServerAsset
	if iconURL != "" {
		large = iconURL
	}
	return client.Activity{
		Details: "Multiplayer – " + name,
		State:   address,
		Assets: &client.Assets{
			LargeImage: large,
			LargeText:  name,
			SmallImage: cfg.LogoAsset,
			SmallText:  cfg.ProductName,
		},
		Timestamps: client.StartedAt(now),
	}
}

func RealmsActivity(cfg Config, name string, now time.Time) client.Activity {
	if name == "" {
		name = defaultRealmName
	}
	return client.Activity{
		Details: realmDetails,
		State:   name,
		Assets: &client.Assets{
			LargeImage: cfg.RealmsAsset,
			LargeText:  realmDetails,
			SmallImage: cfg.LogoAsset,
			SmallText:  cfg.ProductName,
		},
		Timestamps: client.StartedAt(now),
	}
}
