// Package classify maps foreground application identifiers to categories.
package classify

import "strings"

// Category labels produced by the classifier.
const (
	Coding        = "Coding"
	Browsing      = "Browsing"
	Communication = "Communication"
	Productivity  = "Productivity"
	Design        = "Design"
	Entertainment = "Entertainment"
	SocialMedia   = "Social Media"
	Education     = "Education"
	Utilities     = "Utilities"
	Finance       = "Finance"
	Reading       = "Reading"
	Shopping      = "Shopping"
	Other         = "Other"
)

// Rule maps a case-insensitive substring pattern to a category. User rules
// are checked before the built-in tables, in insertion order; the first
// matching rule wins, so order must survive save/load.
type Rule struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

// Classifier resolves an app identifier to exactly one category. It holds
// no mutable state; Classify is pure and always returns a category.
type Classifier struct {
	rules []Rule
}

// New returns a classifier using the given custom rules ahead of the
// built-in keyword tables. A nil slice is fine.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the category for appID. Unrecognized input, including
// the empty string, yields Other.
func (c *Classifier) Classify(appID string) string {
	lower := strings.ToLower(appID)

	for _, r := range c.rules {
		if r.Pattern != "" && strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return r.Category
		}
	}

	if containsAny(lower, codingKeywords) {
		return Coding
	}

	// Browsers get a second-level decision: a recognized site category
	// beats plain Browsing.
	if containsAny(lower, browserKeywords) {
		for _, g := range siteGroups {
			if containsAny(lower, g.keywords) {
				return g.category
			}
		}
		return Browsing
	}

	for _, g := range appGroups {
		if containsAny(lower, g.keywords) {
			return g.category
		}
	}
	return Other
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

type keywordGroup struct {
	category string
	keywords []string
}

var codingKeywords = []string{
	// IDEs
	"vscode", "visual studio code", "pycharm", "intellij", "webstorm", "phpstorm",
	"goland", "rider", "clion", "datagrip", "rubymine", "appcode",
	"eclipse", "netbeans", "android studio", "xcode", "sublime", "atom",
	"brackets", "notepad++", "vim", "emacs", "nano", "gedit",
	"code.exe", "code - insiders",
	// Specialized editors
	"jupyter", "spyder", "rstudio", "matlab", "octave",
	"postman", "insomnia", "swagger",
	// Terminal/Command line
	"terminal", "iterm", "cmd.exe", "powershell", "wsl", "bash", "zsh",
	"windows terminal", "hyper", "alacritty", "kitty", "terminator",
	"putty", "winscp", "filezilla",
	// Version control
	"gitkraken", "sourcetree", "github desktop", "tower", "smartgit",
	"tortoisegit", "git gui",
	// Database tools
	"dbeaver", "mysql workbench", "pgadmin", "sequel pro", "tableplus",
	"mongodb compass", "redis", "robo 3t",
	// Dev tools
	"docker", "kubernetes", "vagrant", "virtualbox", "vmware",
	"wireshark", "fiddler", "charles proxy",
}

var browserKeywords = []string{
	"chrome", "firefox", "safari", "edge", "brave", "opera",
	"vivaldi", "arc", "chromium", "iexplore", "internet explorer",
}

// siteGroups subclassifies browser windows by what the title says the user
// is looking at. Checked in order; first match wins.
var siteGroups = []keywordGroup{
	{Coding, []string{
		"github", "gitlab", "bitbucket", "stackoverflow", "stack overflow",
		"leetcode", "hackerrank", "codepen", "codesandbox", "repl.it", "jsfiddle",
		"glitch", "stackblitz", "playcode", "codeanywhere",
		"mdn", "w3schools", "devdocs", "docs.python", "docs.microsoft",
		"developer.mozilla", "documentation", "api reference", "tutorial",
		"udemy", "coursera", "edx", "pluralsight", "skillshare", "freecodecamp",
		"khan academy", "codecademy", "udacity", "egghead", "frontend masters",
		"laracasts", "treehouse", "lynda", "datacamp", "educative",
		"vercel", "netlify", "heroku", "railway", "render", "fly.io",
		"aws console", "azure portal", "google cloud", "digitalocean",
		"cloudflare", "mongodb atlas", "supabase", "planetscale",
		"sentry", "datadog", "new relic", "grafana", "prometheus",
	}},
	{SocialMedia, []string{
		"facebook", "twitter", "instagram", "tiktok", "snapchat",
		"reddit", "pinterest", "tumblr", "linkedin", "mastodon",
		"threads", "bluesky", "whatsapp web", "telegram web",
	}},
	{Entertainment, []string{
		"youtube", "netflix", "twitch", "hulu", "disney", "prime video",
		"spotify", "soundcloud", "apple music", "pandora", "tidal",
		"crunchyroll", "funimation", "hbo", "peacock", "paramount",
	}},
	{Reading, []string{
		"news", "bbc", "cnn", "nytimes", "guardian", "reuters", "medium",
		"substack", "forbes", "techcrunch", "hacker news", "ycombinator",
		"wikipedia", "wikihow",
	}},
	{Shopping, []string{
		"amazon", "ebay", "etsy", "aliexpress", "walmart", "target",
		"shop", "store", "cart", "checkout",
	}},
	{Productivity, []string{
		"gmail", "outlook", "calendar", "google docs", "google sheets",
		"google drive", "dropbox", "notion", "todoist", "trello",
		"asana", "jira", "monday.com", "clickup", "linear", "airtable",
		"coda", "miro", "figma", "figjam", "whimsical", "lucidchart",
		"canva - edit", "excalidraw", "obsidian publish",
	}},
}

// appGroups covers non-browser applications, tested in fixed order after
// the coding and browser checks.
var appGroups = []keywordGroup{
	{Communication, []string{
		// Messaging/Chat
		"slack", "discord", "teams", "microsoft teams", "zoom", "skype",
		"telegram", "whatsapp", "signal", "element", "matrix",
		"messenger", "wechat", "line", "viber", "groupme", "rocketchat",
		"mattermost", "zulip", "gitter", "chanty", "flock",
		// Email clients
		"thunderbird", "outlook", "mail", "spark", "mailspring",
		"mailbird", "em client", "postbox", "claws mail",
		// Video conferencing
		"webex", "gotomeeting", "bluejeans", "jitsi", "meet",
		"facetime", "google meet", "whereby", "around", "mmhmm",
		"discord - voice", "hangouts",
	}},
	{Productivity, []string{
		// Microsoft Office
		"word", "winword", "excel", "powerpoint", "onenote", "access",
		"publisher", "microsoft 365", "office", "teams - calendar",
		// Google Workspace
		"google docs", "google sheets", "google slides", "google drive",
		"google calendar", "google keep",
		// Apple
		"pages", "numbers", "keynote", "reminders",
		// Other office suites
		"libreoffice", "openoffice", "wps office", "calligra", "onlyoffice",
		// Note-taking & knowledge management
		"notion", "obsidian", "evernote", "simplenote",
		"bear", "roam", "logseq", "joplin", "standard notes", "remnote",
		"typora", "mark text", "notable", "craft", "amplenote", "mem",
		"reflect", "tana", "capacities", "anytype",
		// PDF
		"acrobat", "pdf", "foxit", "preview", "sumatra", "pdf-xchange",
		// Project management
		"trello", "asana", "monday", "clickup", "basecamp", "notion calendar",
		"jira", "confluence", "linear", "height", "shortcut", "pivotal tracker",
		"youtrack", "airtable", "smartsheet", "wrike", "teamwork",
		// Task management
		"todoist", "things", "any.do", "microsoft to do", "ticktick",
		"omnifocus", "taskwarrior", "2do", "remember the milk",
		// Spreadsheets/Data
		"coda", "notion database", "fibery",
		// Time management
		"toggl", "rescuetime", "timely", "clockify", "harvest",
		// Collaboration
		"miro", "mural", "figjam", "whimsical", "lucidchart", "draw.io",
		"excalidraw", "tldraw",
	}},
	{Design, []string{
		// Photo/Image editing
		"photoshop", "illustrator", "indesign", "lightroom",
		"gimp", "inkscape", "krita", "affinity photo", "affinity designer",
		"sketch", "figma", "adobe xd", "invision", "framer", "pixelmator",
		"paint.net", "paintshop", "corel draw", "canva", "penpot",
		"lunacy", "photopea", "fotor", "pixlr",
		// Video editing
		"premiere", "after effects", "davinci resolve", "final cut",
		"imovie", "filmora", "camtasia", "shotcut", "kdenlive",
		"vegas", "avid", "blender", "olive", "openshot",
		// 3D modeling
		"maya", "cinema 4d", "zbrush", "houdini", "3ds max",
		"unity", "unreal", "godot", "substance painter", "marmoset",
		// Audio
		"audacity", "logic pro", "ableton", "fl studio", "reaper",
		"pro tools", "garage band", "cubase", "studio one", "ardour",
		"lmms", "caustic",
		// UI/UX design
		"axure", "balsamiq", "mockplus",
		"principle", "protopie", "flinto", "origami studio",
	}},
	{Entertainment, []string{
		// Streaming/Video
		"spotify", "apple music", "itunes", "music", "vlc", "windows media",
		"quicktime", "netflix", "youtube", "twitch", "hulu", "disney+",
		"plex", "kodi", "jellyfin", "emby", "amazon prime video",
		"hbo max", "paramount+", "peacock", "apple tv", "crunchyroll",
		// Gaming platforms
		"steam", "epic games", "epicgameslauncher", "gog galaxy", "origin", "uplay",
		"battle.net", "battlenet", "blizzard", "riot client", "riotclientservices",
		"xbox", "playstation", "ea app", "rockstar games launcher",
		"bethesda launcher", "itch.io", "playnite",
		// Games
		"minecraft", "fortnite", "valorant", "league of legends", "leagueoflegends",
		"dota", "dota2", "counter-strike", "csgo", "cs2", "overwatch",
		"apex legends", "apexlegends", "rocket league", "roblox", "among us",
		"fall guys", "wow", "world of warcraft", "destiny", "call of duty",
		"gta", "grand theft auto", "red dead", "elden ring", "baldurs gate",
		"cyberpunk", "witcher", "skyrim", "fallout", "halo", "warzone",
		"game", ".exe - ",
		// Media players
		"soundcloud", "pandora", "tidal", "deezer", "youtube music",
		"foobar2000", "winamp", "clementine", "rhythmbox",
	}},
	{SocialMedia, []string{
		"facebook", "twitter", "instagram", "tiktok", "snapchat",
		"reddit", "pinterest", "linkedin", "mastodon", "threads",
	}},
	{Education, []string{
		"anki", "quizlet", "duolingo", "rosetta stone",
		"mathematica", "maple", "geogebra", "desmos",
		"moodle", "canvas", "blackboard", "schoology",
		"zoom", "google classroom",
	}},
	{Utilities, []string{
		"calculator", "notepad", "textedit", "finder", "explorer",
		"settings", "control panel", "system preferences",
		"task manager", "activity monitor", "resource monitor",
		"7-zip", "winrar", "winzip", "archive utility",
		"snipping tool", "screenshot", "greenshot", "lightshot",
	}},
	{Finance, []string{
		"quickbooks", "quicken", "mint", "ynab", "personal capital",
		"coinbase", "robinhood", "webull", "etrade", "fidelity",
		"paypal", "venmo", "cash app", "crypto",
	}},
	{Reading, []string{
		"kindle", "apple books", "calibre", "goodreads",
		"pocket", "instapaper", "readwise", "reader",
	}},
}
