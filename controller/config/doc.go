// Package config provides controller profile management.
//
// A profile describes what the server publishes to clients:
//   - The playing-field size (area_size)
//   - The ordered action catalog rendered as buttons on the client
//
// Profile Format:
//
// Profiles are JSON files in the config directory:
//
//	{
//	  "name": "platformer",
//	  "description": "Side scroller bindings",
//	  "area_size": {"width": 1.0, "height": 2.0},
//	  "actions": [
//	    {"id": "save", "description": "Save game"},
//	    {"id": "load", "description": "Load game"}
//	  ]
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := manager.LoadProfile("platformer")
//	if errors.Is(err, config.ErrProfileNotFound) {
//		profile = manager.Default()
//	}
//
// Validation:
//
// Profiles are rejected when the area size is negative or not finite, or
// when an action has an empty or duplicate id.
package config
