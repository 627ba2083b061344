package route

import "regexp"

// Lexical cues and their weights. Phrases are matched on word boundaries
// against the lowercased question.
var productCues = map[string]float64{
	"drinkware": 2, "tumbler": 2, "tumblers": 2, "mug": 2, "mugs": 2,
	"cup": 1.5, "cups": 1.5, "cold cup": 2, "bottle": 1.5, "bottles": 1.5, "flask": 1.5,
	"lid": 1, "straw": 1, "ceramic": 1.5, "stainless": 1.5, "steel": 1, "capacity": 1.5,
	"ml": 1.5, "oz": 1.5, "colour": 1, "color": 1, "edition": 1.5, "collection": 1.5,
	"price": 1.5, "prices": 1.5, "priced": 1.5, "cost": 1, "costs": 1, "how much": 1.5,
	"cheap": 1, "cheapest": 1.5, "expensive": 1, "affordable": 1,
	"drink": 1.5, "drinks": 1.5, "beverage": 1.5, "beverages": 1.5, "menu": 1.5,
	"seasonal": 2, "latte": 2, "americano": 2, "cappuccino": 2, "espresso": 1.5,
	"frappe": 2, "matcha": 2, "chocolate": 1, "tea": 1, "flavour": 1, "flavor": 1,
	"product": 2, "products": 2, "merchandise": 2, "merch": 2,
	"buy": 1, "sell": 1, "sells": 1, "recommend": 1, "promotion": 1, "promo": 1,
}

var outletCues = map[string]float64{
	"outlet": 2, "outlets": 2, "branch": 2, "branches": 2, "store": 1.5, "stores": 1.5,
	"kiosk": 1.5, "shop": 1, "cafe": 1, "open": 1.5, "opens": 1.5, "opening": 1.5,
	"close": 1, "closes": 1.5, "closing": 1.5, "closed": 1, "hours": 2, "24 hours": 2,
	"located": 2, "location": 2, "locations": 2, "address": 2, "where": 1,
	"near": 1, "nearby": 1.5, "nearest": 1.5, "directions": 1.5, "map": 1,
	"dine in": 2, "dine-in": 2, "takeaway": 1.5, "take away": 1.5, "delivery": 1.5,
	"drive-thru": 2, "drive thru": 2, "drive-through": 2, "drive through": 2,
	"pickup": 1.5, "pick up": 1, "parking": 1.5, "wifi": 1.5, "wi-fi": 1.5,
	"wheelchair": 1.5, "outdoor seating": 1.5, "mall": 1.5, "jalan": 2,
	"kuala lumpur": 1.5, "kl": 1, "selangor": 1.5, "petaling jaya": 1.5, "pj": 1,
}

// anaphoraCues mark follow-ups that lean on earlier turns.
var anaphoraCues = []string{
	"its", "it", "there", "that one", "this one", "that place", "those", "them",
	"they", "what about", "how about", "and the", "same", "also",
}

const (
	priceWeight = 2.0
	placeWeight = 1.0
)

var (
	// priceExpr matches a ringgit amount such as "RM 55" or "rm39.90".
	priceExpr = regexp.MustCompile(`(?i)\brm\s?\d`)
	// placeExpr matches a capitalised place after a locative preposition.
	placeExpr = regexp.MustCompile(`\b(?:in|at|near|around)\s+[A-Z][A-Za-z0-9]`)
)
