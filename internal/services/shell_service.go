package services

import (
	"fmt"
	"sync"

	"fastpost/internal/models"
)

// Tab identifies a top-level view.
type Tab string

const (
	TabHome      Tab = "home"
	TabChat      Tab = "chat"
	TabCreate    Tab = "create"
	TabDashboard Tab = "dashboard"
	TabProfile   Tab = "profile"
)

var navOrder = []Tab{TabHome, TabChat, TabCreate, TabDashboard, TabProfile}

// Language is a display language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKurdish Language = "ku"
)

// Direction returns the text direction of the language.
func (l Language) Direction() string {
	if l == LanguageKurdish {
		return "rtl"
	}
	return "ltr"
}

// Theme is a display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ShellState is the per-actor view state of the presentation shell.
type ShellState struct {
	ActiveTab Tab      `json:"active_tab"`
	Language  Language `json:"language"`
	Direction string   `json:"direction"`
	Theme     Theme    `json:"theme"`
	Nav       []Tab    `json:"nav"`
}

type shellPrefs struct {
	tab   Tab
	lang  Language
	theme Theme
}

// ShellService keeps tab, language and theme state. It holds no business logic.
type ShellService struct {
	mu            sync.Mutex
	prefs         map[string]*shellPrefs
	onLeaveCreate func(actorID string)
}

// NewShellService creates a new ShellService. onLeaveCreate, if set, runs when
// an actor navigates away from the create tab.
func NewShellService(onLeaveCreate func(actorID string)) *ShellService {
	return &ShellService{
		prefs:         make(map[string]*shellPrefs),
		onLeaveCreate: onLeaveCreate,
	}
}

func (s *ShellService) prefsLocked(actorID string) *shellPrefs {
	p, ok := s.prefs[actorID]
	if !ok {
		p = &shellPrefs{tab: TabHome, lang: LanguageEnglish, theme: ThemeLight}
		s.prefs[actorID] = p
	}
	return p
}

// NavFor returns the tabs available to the actor, in display order.
func NavFor(actor models.User) []Tab {
	nav := make([]Tab, 0, len(navOrder))
	for _, t := range navOrder {
		if t == TabDashboard && !actor.IsAdmin() {
			continue
		}
		nav = append(nav, t)
	}
	return nav
}

func stateOf(actor models.User, p *shellPrefs) ShellState {
	return ShellState{
		ActiveTab: p.tab,
		Language:  p.lang,
		Direction: p.lang.Direction(),
		Theme:     p.theme,
		Nav:       NavFor(actor),
	}
}

// State returns the actor's shell state.
func (s *ShellService) State(actor models.User) ShellState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stateOf(actor, s.prefsLocked(actor.ID))
}

// SelectTab switches the active tab. The dashboard is reserved for admins.
func (s *ShellService) SelectTab(actor models.User, tab Tab) (ShellState, error) {
	known := false
	for _, t := range navOrder {
		if t == tab {
			known = true
			break
		}
	}
	if !known {
		return ShellState{}, fmt.Errorf("%w: unknown tab %q", ErrInvalidInput, tab)
	}
	if tab == TabDashboard && !actor.IsAdmin() {
		return ShellState{}, fmt.Errorf("actor %s cannot open the dashboard: %w", actor.ID, ErrForbidden)
	}

	s.mu.Lock()
	p := s.prefsLocked(actor.ID)
	leftCreate := p.tab == TabCreate && tab != TabCreate
	p.tab = tab
	state := stateOf(actor, p)
	s.mu.Unlock()

	if leftCreate && s.onLeaveCreate != nil {
		s.onLeaveCreate(actor.ID)
	}
	return state, nil
}

// ToggleTheme flips between light and dark.
func (s *ShellService) ToggleTheme(actor models.User) ShellState {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.prefsLocked(actor.ID)
	if p.theme == ThemeLight {
		p.theme = ThemeDark
	} else {
		p.theme = ThemeLight
	}
	return stateOf(actor, p)
}

// SetLanguage switches the display language.
func (s *ShellService) SetLanguage(actor models.User, lang Language) (ShellState, error) {
	if lang != LanguageEnglish && lang != LanguageKurdish {
		return ShellState{}, fmt.Errorf("%w: unknown language %q", ErrInvalidInput, lang)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.prefsLocked(actor.ID)
	p.lang = lang
	return stateOf(actor, p), nil
}
