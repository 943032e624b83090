package diag

import "fmt"

// Location points at an instruction inside a program document.
// Index is -1 when the diagnostic concerns the whole function or file.
type Location struct {
	File     string `json:"file" msgpack:"file"`
	Function string `json:"function,omitempty" msgpack:"function"`
	Index    int    `json:"index" msgpack:"index"`
}

// At builds a location for instruction index of function in file.
func At(file, function string, index int) Location {
	return Location{File: file, Function: function, Index: index}
}

// FileLocation builds a location covering a whole file.
func FileLocation(file string) Location {
	return Location{File: file, Index: -1}
}

// Less orders locations by file, function and instruction.
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.Function != o.Function {
		return l.Function < o.Function
	}
	return l.Index < o.Index
}

func (l Location) String() string {
	switch {
	case l.Function == "":
		return l.File
	case l.Index < 0:
		return fmt.Sprintf("%s:%s", l.File, l.Function)
	default:
		return fmt.Sprintf("%s:%s#%d", l.File, l.Function, l.Index)
	}
}
