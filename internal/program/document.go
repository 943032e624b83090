package program

// Document is the TOML shape of a program file.
type Document struct {
	Functions []FunctionDoc `toml:"function"`
}

// FunctionDoc is one instruction sequence.
type FunctionDoc struct {
	Name string `toml:"name"`
	// Expect names the first violation the sequence must produce.
	Expect string `toml:"expect,omitempty"`
	// StrictMutability overrides the manifest when set.
	StrictMutability *bool   `toml:"strict_mutability,omitempty"`
	Ops              []OpDoc `toml:"op"`
}

// OpDoc is one instruction. Which fields are required depends on Op.
type OpDoc struct {
	Op      string `toml:"op"`
	Name    string `toml:"name,omitempty"`
	Src     string `toml:"src,omitempty"`
	Dst     string `toml:"dst,omitempty"`
	Kind    string `toml:"kind,omitempty"`
	Mutable bool   `toml:"mutable,omitempty"`
}
