package service

import (
	"context"
	"sort"
	"sync"

	"eventsphere/internal/model"
	"eventsphere/internal/repo"
)

// memRepo is an in-memory Repository with the same uniqueness rules as the
// PostgreSQL schema. One mutex stands in for the row locks.
type memRepo struct {
	mu           sync.Mutex
	organizers   map[string]model.Organizer
	events       map[string]model.Event
	participants map[string][]model.Participant
	checkins     map[string]model.CheckIn
}

func newMemRepo() *memRepo {
	return &memRepo{
		organizers:   map[string]model.Organizer{},
		events:       map[string]model.Event{},
		participants: map[string][]model.Participant{},
		checkins:     map[string]model.CheckIn{},
	}
}

func checkinKey(eventID, code string) string { return eventID + "/" + code }

func (m *memRepo) CreateOrganizer(_ context.Context, o *model.Organizer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.organizers {
		if existing.Email == o.Email {
			return repo.ErrEmailTaken
		}
	}
	m.organizers[o.ID] = *o
	return nil
}

func (m *memRepo) GetOrganizerByEmail(_ context.Context, email string) (*model.Organizer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.organizers {
		if o.Email == email {
			return &o, nil
		}
	}
	return nil, repo.ErrOrganizerNotFound
}

func (m *memRepo) GetOrganizerByID(_ context.Context, id string) (*model.Organizer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.organizers[id]
	if !ok {
		return nil, repo.ErrOrganizerNotFound
	}
	return &o, nil
}

func (m *memRepo) CreateEvent(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.events {
		if existing.OrganizerID == e.OrganizerID && existing.Slug == e.Slug {
			return repo.ErrSlugTaken
		}
	}
	m.events[e.ID] = *e
	return nil
}

func (m *memRepo) GetEventByID(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	return &e, nil
}

func (m *memRepo) GetEventBySlug(_ context.Context, slug string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *model.Event
	for _, e := range m.events {
		if e.Slug != slug {
			continue
		}
		if e.Status == model.EventPublished {
			return &e, nil
		}
		if found == nil {
			found = &e
		}
	}
	if found == nil {
		return nil, repo.ErrEventNotFound
	}
	return found, nil
}

func (m *memRepo) GetOrganizerEventBySlug(_ context.Context, organizerID, slug string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.OrganizerID == organizerID && e.Slug == slug {
			return &e, nil
		}
	}
	return nil, repo.ErrEventNotFound
}

func (m *memRepo) ListEvents(_ context.Context, f model.EventFilter) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Event, 0)
	for _, e := range m.events {
		if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *memRepo) UpdateEvent(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return repo.ErrEventNotFound
	}
	for _, existing := range m.events {
		if existing.ID != e.ID && existing.OrganizerID == e.OrganizerID && existing.Slug == e.Slug {
			return repo.ErrSlugTaken
		}
	}
	m.events[e.ID] = *e
	return nil
}

func (m *memRepo) SetEventStatus(_ context.Context, id string, status model.EventStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return repo.ErrEventNotFound
	}
	e.Status = status
	m.events[id] = e
	return nil
}

func (m *memRepo) DeleteEventTx(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repo.ErrEventNotFound
	}
	for _, p := range m.participants[id] {
		delete(m.checkins, checkinKey(id, p.TicketCode))
	}
	delete(m.participants, id)
	delete(m.events, id)
	return nil
}

func (m *memRepo) CreateParticipantTx(_ context.Context, p *model.Participant, admit repo.AdmitFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[p.EventID]
	if !ok {
		return repo.ErrEventNotFound
	}
	for _, existing := range m.participants[p.EventID] {
		if existing.Phone == p.Phone || existing.Email == p.Email {
			return repo.ErrDuplicateRegistration
		}
	}
	if err := admit(&e, len(m.participants[p.EventID])); err != nil {
		return err
	}
	for _, existing := range m.participants[p.EventID] {
		if existing.TicketCode == p.TicketCode {
			return repo.ErrTicketTaken
		}
	}
	m.participants[p.EventID] = append(m.participants[p.EventID], *p)
	e.TotalRegistrations = len(m.participants[p.EventID])
	m.events[e.ID] = e
	return nil
}

func (m *memRepo) GetParticipant(_ context.Context, eventID, ticketCode string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(eventID, ticketCode)
	if i < 0 {
		return nil, repo.ErrParticipantNotFound
	}
	p := m.participants[eventID][i]
	return &p, nil
}

func (m *memRepo) GetParticipantByPhone(_ context.Context, eventID, phone string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants[eventID] {
		if p.Phone == phone {
			return &p, nil
		}
	}
	return nil, repo.ErrParticipantNotFound
}

func (m *memRepo) ListParticipants(_ context.Context, eventID string, status model.ParticipantStatus) ([]model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Participant, 0)
	for _, p := range m.participants[eventID] {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) ParticipantStats(_ context.Context, eventID string) (model.ParticipantStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st model.ParticipantStats
	for _, p := range m.participants[eventID] {
		st.Total++
		switch p.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusApproved:
			st.Approved++
		case model.StatusRejected:
			st.Rejected++
		case model.StatusCheckedIn:
			st.CheckedIn++
		}
	}
	return st, nil
}

func (m *memRepo) UpdateParticipantTx(_ context.Context, eventID, ticketCode string, apply repo.ApplyFunc) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(eventID, ticketCode)
	if i < 0 {
		return nil, repo.ErrParticipantNotFound
	}
	p := m.participants[eventID][i]
	if err := apply(&p); err != nil {
		return nil, err
	}
	m.participants[eventID][i] = p
	return &p, nil
}

func (m *memRepo) CheckInTx(_ context.Context, c *model.CheckIn, apply repo.ApplyFunc) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(c.EventID, c.TicketCode)
	if i < 0 {
		return nil, repo.ErrParticipantNotFound
	}
	p := m.participants[c.EventID][i]
	if err := apply(&p); err != nil {
		return nil, err
	}
	key := checkinKey(c.EventID, c.TicketCode)
	if _, exists := m.checkins[key]; exists {
		return nil, repo.ErrAlreadyCheckedIn
	}
	m.checkins[key] = *c
	m.participants[c.EventID][i] = p
	return &p, nil
}

func (m *memRepo) RemoveCheckInTx(_ context.Context, eventID, ticketCode string, apply repo.ApplyFunc) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(eventID, ticketCode)
	if i < 0 {
		return nil, repo.ErrParticipantNotFound
	}
	p := m.participants[eventID][i]
	if err := apply(&p); err != nil {
		return nil, err
	}
	delete(m.checkins, checkinKey(eventID, ticketCode))
	m.participants[eventID][i] = p
	return &p, nil
}

func (m *memRepo) Ping(context.Context) error { return nil }
func (m *memRepo) MigrateUp(string) error     { return nil }
func (m *memRepo) MigrateDown(string) error   { return nil }

func (m *memRepo) checkinCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.checkins)
}

func (m *memRepo) indexOf(eventID, code string) int {
	for i, p := range m.participants[eventID] {
		if p.TicketCode == code {
			return i
		}
	}
	return -1
}
