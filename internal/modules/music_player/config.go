package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`

	// Spotify credentials are optional; without them Spotify links fall
	// back to raw searches.
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`

	// DisconnectTimeout is used by both auto-disconnect triggers: how long
	// a voice channel may stay empty, and how long a player may sit idle.
	DisconnectTimeout time.Duration `env:"DISCONNECT_TIMEOUT" envDefault:"600s"`
}
