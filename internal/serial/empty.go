package serial

import "io"

// EmptySerializer is used for messages that carry no payload. Its builders are
// finished as soon as they are created.
type EmptySerializer struct{}

func (EmptySerializer) Serialize(obj any, _ io.Writer) error {
	if obj != nil {
		if _, ok := obj.(struct{}); !ok {
			return typeMismatch("struct{}", obj)
		}
	}
	return nil
}

func (EmptySerializer) NewBuilder() Builder {
	return emptyBuilder{}
}

type emptyBuilder struct{}

func (emptyBuilder) AddByte(byte) (bool, error) { return true, ErrBuilderFinished }
func (emptyBuilder) Finished() bool             { return true }
func (emptyBuilder) Object() any                { return struct{}{} }
