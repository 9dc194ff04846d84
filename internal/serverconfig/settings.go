package serverconfig

// Settings is the full set of layered values collabd reads at startup.
// Every field here is a layered setting per spec.md's explicit
// non-goal on command-line option parsing: there is no flag package
// import anywhere in this module.
type Settings struct {
	// Listen is the address collabd's RPC listener binds to.
	Listen string

	// DatabaseDSN is the Postgres connection string internal/sessionstore
	// passes to pgxpool.New.
	DatabaseDSN string

	// RedisAddr is the go-redis client address used for room presence
	// and membership-change pub/sub fanout.
	RedisAddr string

	// LogLevel seeds internal/obslog's initial Logger level.
	LogLevel string

	// WrapWidth is the default soft-wrap column for new buffers before
	// a client requests a different width.
	WrapWidth int

	// TabWidth is the default hard-tab stop width internal/tabtransform
	// uses when a buffer doesn't override it.
	TabWidth int

	// FontSize is carried through only so clients computing
	// pixel-based wrap widths have a server-side default to fall back
	// on; the server itself never rasterizes anything.
	FontSize float64
}

// defaults returns the builtin layer, lowest priority, always present.
func defaults() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"listen": ":8942",
		},
		"db": map[string]any{
			"dsn": "postgres://localhost:5432/collabcore?sslmode=disable",
		},
		"redis": map[string]any{
			"addr": "localhost:6379",
		},
		"logging": map[string]any{
			"level": "info",
		},
		"editor": map[string]any{
			"wrapWidth": int64(80),
			"tabWidth":  int64(4),
			"fontSize":  13.0,
		},
	}
}

// fromMap decodes a merged layer map into a Settings value, leaving
// any missing path at its prior (already-merged) value.
func fromMap(m map[string]any) Settings {
	return Settings{
		Listen:      getString(m, "server.listen", ":8942"),
		DatabaseDSN: getString(m, "db.dsn", ""),
		RedisAddr:   getString(m, "redis.addr", "localhost:6379"),
		LogLevel:    getString(m, "logging.level", "info"),
		WrapWidth:   int(getInt(m, "editor.wrapWidth", 80)),
		TabWidth:    int(getInt(m, "editor.tabWidth", 4)),
		FontSize:    getFloat(m, "editor.fontSize", 13.0),
	}
}
