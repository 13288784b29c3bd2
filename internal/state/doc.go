// Package state provides the shared in-process state containers of a
// wishtrack client.
//
// # Core Types
//
// Value[T]:
//   - Thread-safe container for one value
//   - Get/Set/Update/Subscribe
//   - Optional clone function so maps and slices are never shared with callers
//
// Application:
//   - Holds ApplicationState{IsAuthenticated}
//   - Flipped to false by logout, to true by the shell after the provider
//     redirect comes back
//
// Profile:
//   - Holds the UserProfile
//   - Reset() replaces it with DefaultUserProfile()
//
// # Ownership
//
// Nothing here is a package-level singleton. The composition root creates one
// Application and one Profile and passes them to every component that reads
// or mutates them.
//
// # Notifications
//
// Subscribers run synchronously on the goroutine that called Set or Update,
// after the lock is released, so a subscriber may read the container again
// without deadlocking. Every write notifies, including writes that leave the
// value unchanged.
//
//	app := state.NewApplication()
//	stop := app.Subscribe(func(s state.ApplicationState) {
//		log.Printf("authenticated=%v", s.IsAuthenticated)
//	})
//	defer stop()
//	app.SetAuthenticated(true)
package state
