// resources.go defines the set of resources owned by one slot.

package resource

import (
	"strings"
)

// Resources holds at most one resource per Type.
type Resources struct {
	items [EndOfType]Resource
}

func (r *Resources) Get(t Type) Resource {
	if !t.IsValid() {
		return nil
	}
	return r.items[t]
}

func (r *Resources) Set(t Type, res Resource) {
	r.items[t] = res
}

func (r *Resources) Take(t Type) Resource {
	res := r.items[t]
	r.items[t] = nil
	return res
}

func (r *Resources) Len() int {
	count := 0
	for _, res := range r.items {
		if res != nil {
			count++
		}
	}
	return count
}

// TotalSize is the sum of the sizes of all the resources.
func (r *Resources) TotalSize() uint64 {
	var total uint64
	for _, res := range r.items {
		if res != nil {
			total += res.Spec().Size
		}
	}
	return total
}

func (r *Resources) String() string {
	var parts []string
	for _, res := range r.items {
		if res != nil {
			parts = append(parts, res.String())
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
