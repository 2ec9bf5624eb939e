package cmd

// Install registers the server as a system service.
type Install struct{}

// Uninstall removes the system service.
type Uninstall struct{}
