// Package config loads the machine configuration a host front end
// uses to stand up a hart: which extensions are active, where the
// guest memory image comes from, and whether/where a block-translation
// cache should be persisted. Configuration is plain TOML, parsed with
// BurntSushi/toml the same way every other config-bearing tool in this
// corpus does it.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Extensions selects which standard extensions beyond the RV32I base
// are active. It mirrors decode.Extensions field-for-field so either
// can be built from the other without translation tables.
type Extensions struct {
	M        bool `toml:"m"`
	A        bool `toml:"a"`
	F        bool `toml:"f"`
	C        bool `toml:"c"`
	Zicsr    bool `toml:"zicsr"`
	Zifencei bool `toml:"zifencei"`
}

// Machine is the top-level configuration for one emulated hart.
type Machine struct {
	Extensions Extensions `toml:"extensions"`

	// EntryPoint is the initial program counter.
	EntryPoint uint32 `toml:"entry_point"`

	// ImagePath is a flat binary memory image loaded at LoadAddress.
	ImagePath   string `toml:"image_path"`
	LoadAddress uint32 `toml:"load_address"`

	// CachePath, if non-empty, is where the block-translation cache is
	// persisted between runs. An empty value disables persistence; the
	// cache is still used in memory for the lifetime of one run.
	CachePath string `toml:"cache_path"`

	// Console selects the host I/O backend an ECALL handler uses for
	// character I/O: "none" (the default) or "raw" (golang.org/x/term).
	Console string `toml:"console"`
}

// DefaultMachine returns the configuration used when no file is given:
// RV32IMAFC with Zicsr/Zifencei, entry point and load address both
// zero, no image, no persisted cache, no console.
func DefaultMachine() Machine {
	return Machine{
		Extensions: Extensions{M: true, A: true, F: true, C: true, Zicsr: true, Zifencei: true},
		Console:    "none",
	}
}

// Load reads and parses a Machine configuration from path.
func Load(path string) (Machine, error) {
	m := DefaultMachine()
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Machine{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Machine{}, fmt.Errorf("config: %s: unrecognised keys: %v", path, undecoded)
	}
	return m, nil
}
