package state

import (
	"maps"
	"slices"

	"customer-store/internal/domain/customer"
)

// EntityCollection stores customers keyed by id plus the ids in insertion
// order. Every method returns a new collection and leaves the receiver as it was.
type EntityCollection struct {
	IDs  []int64
	ByID map[int64]customer.Customer
}

func emptyCollection() EntityCollection {
	return EntityCollection{IDs: []int64{}, ByID: map[int64]customer.Customer{}}
}

func (c EntityCollection) Len() int {
	return len(c.IDs)
}

func (c EntityCollection) Has(id int64) bool {
	_, ok := c.ByID[id]
	return ok
}

// Get returns a copy of the entity stored under id.
func (c EntityCollection) Get(id int64) (customer.Customer, bool) {
	cust, ok := c.ByID[id]
	if !ok {
		return customer.Customer{}, false
	}
	return cust.Clone(), true
}

// All returns copies of the entities in insertion order.
func (c EntityCollection) All() []customer.Customer {
	out := make([]customer.Customer, 0, len(c.IDs))
	for _, id := range c.IDs {
		out = append(out, c.ByID[id].Clone())
	}
	return out
}

// SetAll replaces the collection content. A repeated id keeps its first
// position and its last value.
func (c EntityCollection) SetAll(customers []customer.Customer) EntityCollection {
	next := EntityCollection{
		IDs:  make([]int64, 0, len(customers)),
		ByID: make(map[int64]customer.Customer, len(customers)),
	}
	for _, cust := range customers {
		if _, seen := next.ByID[cust.ID]; !seen {
			next.IDs = append(next.IDs, cust.ID)
		}
		next.ByID[cust.ID] = cust.Clone()
	}
	return next
}

// AddOne inserts cust unless its id is already present.
func (c EntityCollection) AddOne(cust customer.Customer) EntityCollection {
	if c.Has(cust.ID) {
		return c
	}
	next := c.copy()
	next.IDs = append(next.IDs, cust.ID)
	next.ByID[cust.ID] = cust.Clone()
	return next
}

// UpsertOne inserts cust or replaces the stored record with the same id.
func (c EntityCollection) UpsertOne(cust customer.Customer) EntityCollection {
	if !c.Has(cust.ID) {
		return c.AddOne(cust)
	}
	next := c.copy()
	next.ByID[cust.ID] = cust.Clone()
	return next
}

// UpdateOne merges changes into an existing entity. Unknown ids are ignored.
func (c EntityCollection) UpdateOne(u Update) EntityCollection {
	current, ok := c.ByID[u.ID]
	if !ok {
		return c
	}
	next := c.copy()
	next.ByID[u.ID] = current.Merge(u.Changes)
	return next
}

// RemoveOne drops id. Unknown ids are ignored.
func (c EntityCollection) RemoveOne(id int64) EntityCollection {
	if !c.Has(id) {
		return c
	}
	next := c.copy()
	delete(next.ByID, id)
	next.IDs = slices.DeleteFunc(next.IDs, func(v int64) bool { return v == id })
	return next
}

// snapshot is a deep copy: nothing in it is shared with c.
func (c EntityCollection) snapshot() EntityCollection {
	next := EntityCollection{IDs: slices.Clone(c.IDs)}
	if c.ByID != nil {
		next.ByID = make(map[int64]customer.Customer, len(c.ByID))
		for id, cust := range c.ByID {
			next.ByID[id] = cust.Clone()
		}
	}
	return next
}

func (c EntityCollection) copy() EntityCollection {
	byID := maps.Clone(c.ByID)
	if byID == nil {
		byID = map[int64]customer.Customer{}
	}
	return EntityCollection{
		IDs:  slices.Clone(c.IDs),
		ByID: byID,
	}
}
