package core

const (
	DevtermName          = "devterm"
	DevtermUserAgent     = "devterm-gateway/0.1"
	DevtermRepositoryURL = "https://github.com/sandevgo/devterm"
	DevtermVersion       = "0.1.0"
)
