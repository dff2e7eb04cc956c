package domain

import "fmt"

// Resource names a server collection mirrored locally.
type Resource string

// Synchronised resources.
const (
	ResourcePhones    Resource = "phones"
	ResourceCustomers Resource = "customers"
	ResourceSwaps     Resource = "swaps"
	ResourceSales     Resource = "sales"
	ResourceRepairs   Resource = "repairs"
)

// AllResources lists every synchronised resource in a stable order.
func AllResources() []Resource {
	return []Resource{
		ResourcePhones,
		ResourceCustomers,
		ResourceSwaps,
		ResourceSales,
		ResourceRepairs,
	}
}

// IsValid returns true if the resource is recognised.
func (r Resource) IsValid() bool {
	switch r {
	case ResourcePhones, ResourceCustomers, ResourceSwaps, ResourceSales, ResourceRepairs:
		return true
	default:
		return false
	}
}

// String returns the resource name.
func (r Resource) String() string {
	return string(r)
}

// ParseResource converts a user supplied name into a Resource.
func ParseResource(name string) (Resource, error) {
	r := Resource(name)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return r, nil
}
