package dragdrop

import "sync"

// Snapshot is the live state of a drag at one instant.
type Snapshot struct {
	SubjectID string   `json:"subjectId"`
	HoveredID string   `json:"hoveredId,omitempty"`
	Position  Position `json:"position,omitempty"`
}

// Session holds the state of the one drag gesture in progress. Hosts inject a
// Session into the Engine; tests create a fresh one each.
type Session struct {
	mu        sync.Mutex
	active    bool
	subjectID string
	hoveredID string
	position  Position
}

func NewSession() *Session { return &Session{} }

// Start begins a drag of id. It reports whether an unfinished drag was discarded.
func (s *Session) Start(id string) (discarded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	discarded = s.active
	s.active = true
	s.subjectID = id
	s.hoveredID = ""
	s.position = PositionNone
	return discarded
}

// Update records the latest decision. It is ignored while idle.
func (s *Session) Update(d DropDecision) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.hoveredID = d.HoveredID
	s.position = d.Position
	return true
}

// End finishes the drag and returns the state captured just before clearing.
//
// ok is false when there was no drag (the returned SubjectID is empty) or when the
// drag ended over nothing. Either way the session is idle afterwards.
func (s *Session) End() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{SubjectID: s.subjectID, HoveredID: s.hoveredID, Position: s.position}
	wasActive := s.active
	s.clear()
	if !wasActive {
		return Snapshot{}, false
	}
	if snap.HoveredID == "" && snap.Position != PositionRoot {
		return snap, false
	}
	return snap, true
}

// Abort drops the drag without producing a snapshot.
func (s *Session) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.active
	s.clear()
	return was
}

func (s *Session) Current() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Snapshot{}, false
	}
	return Snapshot{SubjectID: s.subjectID, HoveredID: s.hoveredID, Position: s.position}, true
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) clear() {
	s.active = false
	s.subjectID = ""
	s.hoveredID = ""
	s.position = PositionNone
}
