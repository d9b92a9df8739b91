package compiler

import "fmt"

// Category is the runtime value category of a storage slot. The set is
// closed; a slot's category is fixed when it is declared.
type Category int

const (
	Number Category = iota
	List
	FuncObj1
	FuncObj2
)

var categoryNames = [...]string{
	Number:   "number",
	List:     "list",
	FuncObj1: "func1",
	FuncObj2: "func2",
}

func (c Category) String() string {
	if c.Valid() {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= Number && c <= FuncObj2
}

// ParseCategory maps a category name as written in config and prelude files.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return Category(c), nil
		}
	}
	return 0, fmt.Errorf("unknown value category %q", s)
}
