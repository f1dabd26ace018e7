package main

import "time"

// Application identity and the external pages the shell links to.
const (
	appName  = "deskshell"
	appTitle = "Desk Shell"

	homepageURL = "https://github.com/codeGROOVE-dev/deskshell"
	docsURL     = homepageURL + "/blob/main/README.md"
	issuesURL   = homepageURL + "/issues"
	raffleURL   = "https://codegroove.dev/raffle"

	defaultReleaseRepo = "codeGROOVE-dev/deskshell"
)

// Window geometry.
const (
	defaultWidth  = 1200
	defaultHeight = 800
	minWidth      = 640
	minHeight     = 480
)

// Web UI event channels.
const (
	channelNavigate   = "navigate"
	channelReload     = "reload"
	channelBadgeCount = "badge:count"
)

const (
	defaultUpdateInterval = 6 * time.Hour
	minUpdateInterval     = 10 * time.Minute
	logRetention          = 14 * 24 * time.Hour
	maxBrowserOpensMinute = 4
	maxBrowserOpensDay    = 100
)

// allowedHosts are the only hosts the shell opens in the system browser.
var allowedHosts = []string{
	"github.com",
	"codegroove.dev",
}
