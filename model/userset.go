package model

// UserIDSet is an ordered set of user IDs. Campaign membership lists are
// persisted as JSON arrays in a single column, so the set keeps slice
// semantics for serialization while guaranteeing uniqueness on Add.
type UserIDSet []string

func (s UserIDSet) Contains(userID string) bool {
	for _, id := range s {
		if id == userID {
			return true
		}
	}
	return false
}

// Add appends userID if absent and reports whether the set changed.
func (s *UserIDSet) Add(userID string) bool {
	if s.Contains(userID) {
		return false
	}
	*s = append(*s, userID)
	return true
}

// Remove deletes userID if present and reports whether the set changed.
func (s *UserIDSet) Remove(userID string) bool {
	for i, id := range *s {
		if id == userID {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}
