package vmtranslator

import (
	"fmt"
	"io"
)

// Source is one .vm file. Name is the file name without its extension.
type Source struct {
	Name   string
	Reader io.Reader
}

// Translate lowers every source, in order, into one assembly program. With
// bootstrap set the program starts by calling Sys.init.
func Translate(sources []Source, w io.Writer, bootstrap bool) error {
	writer := NewCodeWriter(w)
	if bootstrap {
		writer.WriteInit()
	}
	for _, source := range sources {
		commands, err := Parse(source.Reader)
		if err != nil {
			return fmt.Errorf("%s.vm: %w", source.Name, err)
		}
		writer.SetFileName(source.Name)
		for _, command := range commands {
			if err := writer.WriteCommand(command); err != nil {
				return fmt.Errorf("%s.vm: %w", source.Name, err)
			}
		}
	}
	return writer.Err()
}
