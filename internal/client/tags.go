package client

import "fmt"

// TagTypeEmails is the only tag type the inbox uses
const TagTypeEmails = "Emails"

// ListID identifies the tag carried by every list page
const ListID = "LIST"

// Tag labels a cached result for selective invalidation. A tag with an
// empty ID is generic and matches every tag of its type.
type Tag struct {
	Type string
	ID   string
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// Matches reports whether invalidating t invalidates other
func (t Tag) Matches(other Tag) bool {
	if t.Type != other.Type {
		return false
	}
	return t.ID == "" || t.ID == other.ID
}

// EmailTag tags a single email
func EmailTag(id string) Tag {
	return Tag{Type: TagTypeEmails, ID: id}
}

// ListTag tags every list page
func ListTag() Tag {
	return Tag{Type: TagTypeEmails, ID: ListID}
}

// AllEmailsTag matches every Emails tag
func AllEmailsTag() Tag {
	return Tag{Type: TagTypeEmails}
}

// Operation names the query layer's endpoints
type Operation string

const (
	OpListEmails      Operation = "listEmails"
	OpSearchEmails    Operation = "searchEmails"
	OpGetEmail        Operation = "getEmail"
	OpDeleteEmail     Operation = "deleteEmail"
	OpDeleteAllEmails Operation = "deleteAllEmails"
	OpGetMetaData     Operation = "getMetaData"
	OpLogin           Operation = "login"
)

// provides returns the tags a query holds before its result is known
func provides(op Operation, arg string) []Tag {
	switch op {
	case OpListEmails, OpSearchEmails:
		return []Tag{ListTag()}
	case OpGetEmail:
		return []Tag{EmailTag(arg)}
	default:
		return nil
	}
}

// invalidates returns the tags a mutation invalidates
func invalidates(op Operation, arg string) []Tag {
	switch op {
	case OpDeleteEmail:
		return []Tag{EmailTag(arg)}
	case OpDeleteAllEmails:
		return []Tag{AllEmailsTag()}
	default:
		return nil
	}
}

func listKey(page, size uint) string {
	return fmt.Sprintf("%s(%d,%d)", OpListEmails, page, size)
}

func emailKey(id string) string {
	return fmt.Sprintf("%s(%s)", OpGetEmail, id)
}
