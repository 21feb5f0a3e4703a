package model

// UserProfile is the public profile of a GitHub user.
type UserProfile struct {
	Login     string
	Name      string // Empty when the user has not set a display name.
	AvatarURL string
	Bio       string
	CreatedAt string // ISO-8601 as returned by GitHub.
	Followers int
	Following int
}

// UserData is the consolidated result of the user lookup: the profile plus the
// fixed window of repositories fetched alongside it.
type UserData struct {
	Profile      UserProfile
	Repositories []RepositorySnapshot
}
