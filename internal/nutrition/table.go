// internal/nutrition/table.go
package nutrition

// Category groups foods for scoring.
type Category string

const (
	Vegetables    Category = "vegetables"
	Fruits        Category = "fruits"
	Protein       Category = "protein"
	Grains        Category = "grains"
	Dairy         Category = "dairy"
	Sweets        Category = "sweets"
	Beverages     Category = "beverages"
	ProcessedFood Category = "processedFood"
	FastFood      Category = "fastFood"
	Unknown       Category = "unknown"
)

// Entry is one row of the nutrition table.
type Entry struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
	Details  string   `json:"details"`
}

// table is keyed by canonical lowercase name, words joined with "_".
var table = map[string]Entry{
	// Vegetables 85..95
	"salad":       {Vegetables, 95, "Leafy greens packed with fiber and vitamins"},
	"broccoli":    {Vegetables, 95, "Rich in vitamin C, vitamin K and fiber"},
	"spinach":     {Vegetables, 95, "Iron, folate and vitamin K"},
	"kale":        {Vegetables, 95, "Nutrient dense leafy green"},
	"carrots":     {Vegetables, 90, "High in beta-carotene"},
	"tomato":      {Vegetables, 88, "Lycopene and vitamin C"},
	"cucumber":    {Vegetables, 85, "Hydrating and low calorie"},
	"vegetables":  {Vegetables, 92, "Mixed vegetables, great source of micronutrients"},
	"asparagus":   {Vegetables, 90, "Folate and fiber"},
	"cauliflower": {Vegetables, 88, "Vitamin C and fiber"},
	"edamame":     {Vegetables, 87, "Plant protein and fiber"},
	"eggplant":    {Vegetables, 85, "Fiber and antioxidants"},

	// Fruits 75..90
	"apple":       {Fruits, 85, "Fiber and vitamin C"},
	"banana":      {Fruits, 80, "Potassium and quick energy"},
	"orange":      {Fruits, 85, "Vitamin C rich citrus"},
	"strawberry":  {Fruits, 88, "Antioxidants and vitamin C"},
	"blueberries": {Fruits, 90, "Antioxidant powerhouse"},
	"grapes":      {Fruits, 75, "Natural sugars and antioxidants"},
	"watermelon":  {Fruits, 80, "Hydrating, vitamin A and C"},
	"mango":       {Fruits, 78, "Vitamin A and C"},
	"pineapple":   {Fruits, 78, "Vitamin C and bromelain"},
	"avocado":     {Fruits, 90, "Healthy monounsaturated fats"},
	"fruit":       {Fruits, 85, "Whole fruit, vitamins and fiber"},

	// Protein 60..85
	"chicken": {Protein, 80, "Lean protein"},
	"salmon":  {Protein, 85, "Omega-3 fatty acids and protein"},
	"fish":    {Protein, 82, "Lean protein and healthy fats"},
	"sushi":   {Protein, 70, "Fish and rice, watch the sodium"},
	"egg":     {Protein, 75, "Complete protein"},
	"steak":   {Protein, 60, "High protein, high saturated fat"},
	"tofu":    {Protein, 82, "Plant protein"},
	"shrimp":  {Protein, 75, "Lean protein"},
	"beans":   {Protein, 85, "Plant protein and fiber"},

	// Grains 50..80
	"oatmeal":    {Grains, 80, "Whole grain with soluble fiber"},
	"rice":       {Grains, 60, "Energy from carbohydrates"},
	"brown_rice": {Grains, 75, "Whole grain with fiber"},
	"bread":      {Grains, 55, "Carbohydrates, choose whole grain"},
	"pasta":      {Grains, 55, "Carbohydrates, watch the sauce"},
	"noodles":    {Grains, 50, "Refined carbohydrates"},
	"quinoa":     {Grains, 80, "Complete protein grain"},
	"cereal":     {Grains, 50, "Often high in added sugar"},

	// Dairy 40..70
	"yogurt": {Dairy, 70, "Probiotics and calcium"},
	"milk":   {Dairy, 60, "Calcium and protein"},
	"cheese": {Dairy, 40, "Calcium, high in saturated fat"},

	// Beverages 20..100
	"water":      {Beverages, 100, "Essential hydration"},
	"green_tea":  {Beverages, 95, "Antioxidants, no calories"},
	"tea":        {Beverages, 90, "Antioxidants, low calorie"},
	"coffee":     {Beverages, 70, "Antioxidants, moderate caffeine"},
	"cappuccino": {Beverages, 40, "Coffee with milk foam"},
	"smoothie":   {Beverages, 60, "Fruit nutrients, natural sugars"},
	"juice":      {Beverages, 30, "High in natural sugars"},
	"latte":      {Beverages, 35, "Coffee with steamed milk"},
	"soda":       {Beverages, -60, "Added sugar, empty calories"},
	"cola":       {Beverages, -60, "Added sugar, empty calories"},

	// Processed food -20..-45
	"sausage":         {ProcessedFood, -35, "Processed meat, high sodium"},
	"bacon":           {ProcessedFood, -40, "Processed meat, high fat and sodium"},
	"hot_dog":         {ProcessedFood, -45, "Processed meat"},
	"chips":           {ProcessedFood, -40, "Fried, high sodium"},
	"instant_noodles": {ProcessedFood, -30, "High sodium, refined flour"},
	"ham":             {ProcessedFood, -20, "Cured meat, high sodium"},

	// Fast food -35..-60
	"pizza":         {FastFood, -40, "High in refined carbs and saturated fat"},
	"burger":        {FastFood, -50, "High in saturated fat and calories"},
	"fries":         {FastFood, -55, "Deep fried, high fat"},
	"fried_chicken": {FastFood, -45, "Deep fried, high fat"},
	"nuggets":       {FastFood, -50, "Processed and fried"},
	"taco":          {FastFood, -35, "Varies, often high fat"},
	"burrito":       {FastFood, -35, "Large portion, high calorie"},

	// Sweets -40..-75
	"donut":          {Sweets, -70, "Fried dough with sugar"},
	"cake":           {Sweets, -65, "High sugar and fat"},
	"cheesecake":     {Sweets, -65, "Sugar and saturated fat"},
	"chocolate_cake": {Sweets, -70, "High sugar and fat"},
	"apple_pie":      {Sweets, -50, "Sugar and pastry fat"},
	"ice_cream":      {Sweets, -60, "High sugar and saturated fat"},
	"cookie":         {Sweets, -55, "Sugar and refined flour"},
	"chocolate":      {Sweets, -45, "Sugar, some antioxidants in dark varieties"},
	"candy":          {Sweets, -75, "Pure sugar"},
	"cupcake":        {Sweets, -65, "Sugar and frosting"},
	"brownie":        {Sweets, -60, "Sugar and fat"},
	"pastry":         {Sweets, -55, "Butter and sugar"},
	"waffle":         {Sweets, -40, "Refined flour, usually with syrup"},
	"pancake":        {Sweets, -40, "Refined flour, usually with syrup"},
}

// synonyms maps alternate names to table keys.
var synonyms = map[string]string{
	"espresso":     "coffee",
	"americano":    "coffee",
	"mocha":        "coffee",
	"hamburger":    "burger",
	"cheeseburger": "burger",
	"french_fries": "fries",
	"crisps":       "chips",
	"doughnut":     "donut",
	"porridge":     "oatmeal",
	"oats":         "oatmeal",
	"spaghetti":    "pasta",
	"macaroni":     "pasta",
	"lasagna":      "pasta",
	"ramen":        "noodles",
	"udon":         "noodles",
	"toast":        "bread",
	"sandwich":     "bread",
	"bagel":        "bread",
	"beef":         "steak",
	"pork":         "steak",
	"eggs":         "egg",
	"omelette":     "egg",
	"omelet":       "egg",
	"tuna":         "fish",
	"cod":          "fish",
	"prawns":       "shrimp",
	"strawberries": "strawberry",
	"apples":       "apple",
	"bananas":      "banana",
	"oranges":      "orange",
	"tomatoes":     "tomato",
	"carrot":       "carrots",
	"veggies":      "vegetables",
	"greens":       "salad",
	"lettuce":      "salad",
	"matcha":       "green_tea",
	"coke":         "soda",
	"gelato":       "ice_cream",
	"biscuit":      "cookie",
	"croissant":    "pastry",
	"muffin":       "cupcake",
	"frankfurter":  "hot_dog",
	"yoghurt":      "yogurt",
	"sashimi":      "sushi",
	"rice_bowl":    "rice",
	"fried_rice":   "rice",
}

// Lookup returns the entry for an exact canonical key.
func Lookup(name string) (Entry, bool) {
	e, ok := table[name]
	return e, ok
}

// Size returns the number of canonical entries.
func Size() int {
	return len(table)
}
