package state

// ApplicationState is the process-wide authentication flag.
type ApplicationState struct {
	IsAuthenticated bool
}

// Application holds the ApplicationState for one running client.
type Application struct {
	*Value[ApplicationState]
}

// NewApplication returns an unauthenticated application state.
func NewApplication() *Application {
	return &Application{Value: NewValue(ApplicationState{}, nil)}
}

// IsAuthenticated reports the current flag.
func (a *Application) IsAuthenticated() bool {
	return a.Get().IsAuthenticated
}

// SetAuthenticated updates the flag in place. Subscribers are notified even
// when the value does not change.
func (a *Application) SetAuthenticated(authenticated bool) {
	a.Update(func(s ApplicationState) ApplicationState {
		s.IsAuthenticated = authenticated
		return s
	})
}

// UserProfile describes the signed-in user.
type UserProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Provider  string `json:"provider"`
	AvatarURL string `json:"avatarUrl"`
	Region    string `json:"region"`
}

// DefaultUserProfile is the profile of a signed-out user.
func DefaultUserProfile() UserProfile {
	return UserProfile{}
}

// Profile holds the UserProfile for one running client.
type Profile struct {
	*Value[UserProfile]
}

// NewProfile returns a profile container holding the defaults.
func NewProfile() *Profile {
	return &Profile{Value: NewValue(DefaultUserProfile(), nil)}
}

// Reset replaces the profile wholesale with the defaults.
func (p *Profile) Reset() {
	p.Set(DefaultUserProfile())
}
