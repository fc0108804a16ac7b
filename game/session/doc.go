// Package session provides the active-world holder for isomaze.
//
// The session package implements:
//   - Ownership of the single active world
//   - Camera offset storage
//   - Camera persistence to camera.json
//
// Core Types:
//
// Manager holds the current service.Session and the camera. Starting a new
// world replaces the previous one; there is never more than one maze alive.
// FilePersistence stores the camera's two scalars in the data directory.
//
// Concurrency:
//
// Manager guards its fields with a RWMutex. The world inside a session is not
// synchronized; callers go through service.GameService, which serializes
// access.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("data")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	_ = manager.LoadPersistedCamera()
//
//	sess, err := manager.Start("classic", cfg, 0)
package session
