package clinic

import "sort"

// Partition names the half of the book an appointment lives in.
type Partition string

const (
	PartitionActive   Partition = "active"
	PartitionArchived Partition = "archived"
)

// Book holds the active and archived appointments. The two partitions are
// disjoint. Book is not safe for concurrent use; callers serialize access.
type Book struct {
	active   []Appointment
	archived []Appointment
}

// NewBook builds a book from existing partitions. The slices are copied.
func NewBook(active, archived []Appointment) *Book {
	return &Book{active: cloneAll(active), archived: cloneAll(archived)}
}

// Active returns a copy of the active partition in stored order.
func (b *Book) Active() []Appointment { return cloneAll(b.active) }

// Archived returns a copy of the archive partition in stored order.
func (b *Book) Archived() []Appointment { return cloneAll(b.archived) }

// Len reports the size of each partition.
func (b *Book) Len() (active, archived int) { return len(b.active), len(b.archived) }

// Find looks an appointment up in either partition.
func (b *Book) Find(id ID) (Appointment, Partition, bool) {
	if i := indexOf(b.active, id); i >= 0 {
		return b.active[i].Clone(), PartitionActive, true
	}
	if i := indexOf(b.archived, id); i >= 0 {
		return b.archived[i].Clone(), PartitionArchived, true
	}
	return Appointment{}, "", false
}

// Insert appends a new appointment to the active partition.
func (b *Book) Insert(a Appointment) {
	b.active = append(b.active, a.Clone())
}

// Replace swaps the record with the same ID in place, in whichever partition
// holds it. It reports whether a record was found.
func (b *Book) Replace(a Appointment) (Partition, bool) {
	if i := indexOf(b.active, a.ID); i >= 0 {
		b.active[i] = a.Clone()
		return PartitionActive, true
	}
	if i := indexOf(b.archived, a.ID); i >= 0 {
		b.archived[i] = a.Clone()
		return PartitionArchived, true
	}
	return "", false
}

// Remove deletes the record from whichever partition holds it. Removing an
// absent ID is a no-op that reports false.
func (b *Book) Remove(id ID) bool {
	if i := indexOf(b.active, id); i >= 0 {
		b.active = append(b.active[:i], b.active[i+1:]...)
		return true
	}
	if i := indexOf(b.archived, id); i >= 0 {
		b.archived = append(b.archived[:i], b.archived[i+1:]...)
		return true
	}
	return false
}

// Archive moves every active appointment dated strictly before cutoff into
// the archive and returns how many moved. The archive stays sorted by date.
func (b *Book) Archive(cutoff Date) int {
	keep := make([]Appointment, 0, len(b.active))
	var moved []Appointment
	for _, a := range b.active {
		if a.Date.Before(cutoff) {
			moved = append(moved, a)
			continue
		}
		keep = append(keep, a)
	}
	if len(moved) == 0 {
		return 0
	}
	b.active = keep
	b.archived = append(b.archived, moved...)
	SortByDate(b.archived)
	return len(moved)
}

// RestoreAll moves the whole archive back into the active partition, which is
// then sorted by date.
func (b *Book) RestoreAll() int {
	n := len(b.archived)
	if n == 0 {
		return 0
	}
	b.active = append(b.active, b.archived...)
	b.archived = nil
	SortByDate(b.active)
	return n
}

// RestoreOne moves a single archived appointment back to the active partition.
func (b *Book) RestoreOne(id ID) (Appointment, error) {
	i := indexOf(b.archived, id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}
	a := b.archived[i]
	b.archived = append(b.archived[:i], b.archived[i+1:]...)
	b.active = append(b.active, a)
	SortByDate(b.active)
	return a.Clone(), nil
}

// DeletePermanently removes a single archived appointment.
func (b *Book) DeletePermanently(id ID) error {
	i := indexOf(b.archived, id)
	if i < 0 {
		return ErrNotFound
	}
	b.archived = append(b.archived[:i], b.archived[i+1:]...)
	return nil
}

// SortByDate orders appointments chronologically in place. Appointments on the
// same date keep their relative order.
func SortByDate(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].Date.Before(appts[j].Date)
	})
}

func indexOf(appts []Appointment, id ID) int {
	for i := range appts {
		if appts[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(appts []Appointment) []Appointment {
	out := make([]Appointment, len(appts))
	for i, a := range appts {
		out[i] = a.Clone()
	}
	return out
}
