package analysis

import "civicecho-be/models"

type categoryKeywords struct {
	category models.ComplaintCategory
	keywords []string
}

// categoryTable is checked in order; the first category with any substring hit wins.
var categoryTable = []categoryKeywords{
	{models.CategoryWater, []string{
		"water", "leak", "burst", "pipe", "flooding", "wet", "drainage", "sewage",
		"tap", "supply", "drinking", "muddy", "puddle", "overflow", "plumbing",
		"drain", "gutter", "hydrant", "sprinkler", "dam", "well", "reservoir",
		"tank", "valve", "main", "spill", "wash", "sink", "toilet", "shower",
		"line", "canal", "stream", "pond", "wetland", "sump", "pump", "meter",
	}},
	{models.CategoryGarbage, []string{
		"garbage", "waste", "trash", "litter", "dump", "dirty", "dustbin", "refuse",
		"rubbish", "cleaning", "smell", "odor", "stink", "sanitation", "debris",
		"pile", "bin", "receptacle", "compost", "recycling", "stench", "unhygienic",
		"scrap", "junk", "mess", "clutter", "disposal", "pickup", "truck", "landfill",
		"overflowing", "fly-tipping", "plastic", "bottle", "can", "bag",
	}},
	{models.CategoryRoad, []string{
		"road", "pothole", "crack", "asphalt", "pavement", "damaged", "street",
		"traffic", "signal", "sign", "lane", "bump", "surface", "footpath", "sidewalk",
		"driveway", "alley", "highway", "intersection", "crossing", "zebra",
		"barrier", "curb", "kerb", "hole", "dent", "uneven", "concrete", "paving",
		"marking", "lighting", "light", "lamp", "post", "bridge", "overpass", "tunnel",
	}},
	{models.CategoryPower, []string{
		"power", "electricity", "outage", "blackout", "light", "electric", "voltage",
		"wire", "cable", "pole", "transformer", "switch", "current", "spark", "dark",
		"short", "fuse", "generator", "panel", "station", "pylon", "grid", "supply",
		"cut", "interruption", "failure", "shock", "hanging", "down", "dead",
	}},
	{models.CategorySafety, []string{
		"safety", "dangerous", "hazard", "broken", "accident", "risk", "threat",
		"fire", "smoke", "suspicious", "crime", "theft", "assault", "unsafe", "security",
		"danger", "emergency", "help", "police", "weapon", "fight", "argument",
		"harassment", "abuse", "falling", "unstable", "structurally", "collapse",
		"poison", "toxic", "chemical", "gas", "explosion", "blast", "noise",
	}},
}

var (
	criticalKeywords = []string{"critical", "urgent", "emergency", "asap", "immediately", "dangerous", "severe", "injury"}
	highKeywords     = []string{"serious", "major", "significant", "needs repair", "broken"}
	mediumKeywords   = []string{"issue", "problem", "needs", "should be"}

	// urgencyKeywords force critical severity when sentiment is available.
	urgencyKeywords = []string{"critical", "urgent", "emergency", "asap", "immediately", "dangerous"}
)
