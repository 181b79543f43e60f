package autocomplete

// selection is the panel state machine: Closed or Open(index).
// The index is only meaningful while open and is zero whenever closed.
type selection struct {
	open  bool
	index int
}

// show opens the panel at index 0 and reports whether visibility changed.
func (s *selection) show() bool {
	wasOpen := s.open
	s.open = true
	s.index = 0
	return !wasOpen
}

// hide closes the panel and reports whether visibility changed.
func (s *selection) hide() bool {
	wasOpen := s.open
	s.open = false
	s.index = 0
	return wasOpen
}

// up moves the highlight one result up, wrapping to the last one.
func (s *selection) up(count int) bool {
	if !s.open || count <= 0 {
		return false
	}
	if s.index == 0 {
		s.index = count - 1
	} else {
		s.index = min(s.index-1, count-1)
	}
	return true
}

// down moves the highlight one result down, wrapping to the first one.
func (s *selection) down(count int) bool {
	if !s.open || count <= 0 {
		return false
	}
	if s.index >= count-1 {
		s.index = 0
	} else {
		s.index++
	}
	return true
}

// fit keeps the index inside a result list that just changed size.
func (s *selection) fit(count int) {
	if s.index >= count {
		s.index = 0
	}
}
