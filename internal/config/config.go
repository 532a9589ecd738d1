package config

// Config holds the run-time options of a render.
type Config struct {
	DescriptionPath string
	Format          string // output encoder, see encoder.New
	Workers         int    // upper bound on parallel renders, 0 means one per CPU
	ShowStats       bool
	BuildVersion    string
}
