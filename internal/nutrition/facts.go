package nutrition

import (
	"math/rand"
	"sync"
	"time"
)

var facts = []string{
	"Eating protein with every meal helps maintain stable blood sugar levels and keeps you fuller for longer.",
	"Colorful vegetables contain different phytonutrients, so eating a rainbow ensures you get a variety of health benefits.",
	"Fiber helps feed beneficial gut bacteria, which play a crucial role in immunity and mental health.",
	"Healthy fats from sources like avocados, nuts, and olive oil help your body absorb fat-soluble vitamins A, D, E, and K.",
	"Drinking water before meals can help with portion control and improve digestion.",
	"Berries are packed with antioxidants that help protect your cells from damage and may improve brain function.",
	"Eating slowly and mindfully can help you recognize fullness cues and enjoy your food more.",
	"Omega-3 fatty acids found in fatty fish, walnuts, and flax seeds support heart and brain health.",
	"Leafy greens like spinach and kale are rich in vitamin K, which is essential for bone health and blood clotting.",
	"Fermented foods like yogurt, kimchi, and sauerkraut contain probiotics that support digestive health.",
	"Complex carbohydrates provide sustained energy, while simple sugars cause quick spikes and crashes.",
	"Magnesium, found in nuts and seeds, helps with muscle relaxation, sleep quality, and stress management.",
	"Eating breakfast within an hour of waking can help kickstart your metabolism and improve focus.",
	"Dark chocolate (70%+ cacao) contains flavonoids that may improve heart health and mood.",
	"Vitamin D from sunlight and foods like fatty fish helps calcium absorption for stronger bones.",
	"Meal timing matters: eating most of your calories earlier in the day aligns better with your body's natural rhythms.",
	"Herbs and spices like turmeric, ginger, and cinnamon have anti-inflammatory properties.",
	"Iron from plant sources is better absorbed when paired with vitamin C-rich foods like citrus or bell peppers.",
	"Consistent meal times help regulate your body's hunger hormones and improve metabolic health.",
	"Whole grains contain more fiber, vitamins, and minerals than refined grains, supporting long-term health.",
}

// Facts hands out nutrition facts. It is safe for concurrent use.
type Facts struct {
	mu   sync.Mutex
	intn func(n int) int
}

// NewFacts picks facts with intn; nil uses a time-seeded source.
func NewFacts(intn func(n int) int) *Facts {
	if intn == nil {
		intn = rand.New(rand.NewSource(time.Now().UnixNano())).Intn
	}
	return &Facts{intn: intn}
}

// Random returns one fact.
func (f *Facts) Random() string {
	f.mu.Lock()
	i := f.intn(len(facts))
	f.mu.Unlock()

	if i < 0 || i >= len(facts) {
		i = 0
	}
	return facts[i]
}

// FactCount is the number of available facts.
func FactCount() int {
	return len(facts)
}
