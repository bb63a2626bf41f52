package score

// majorClusters groups related fields of study. A profile major that shares
// a cluster with a posting's required field counts as a near-miss rather
// than a disqualification.
var majorClusters = map[string][]string{
	"engineering": {
		"computer science", "software", "mechanical", "electrical", "civil",
		"aerospace", "biomedical engineering", "chemical engineering",
		"industrial engineering", "environmental engineering",
	},
	"business": {
		"finance", "accounting", "marketing", "management", "economics",
		"entrepreneurship", "business administration", "supply chain",
		"operations management",
	},
	"science": {
		"biology", "chemistry", "physics", "mathematics", "statistics",
		"data science", "environmental science", "materials science",
		"biotechnology",
	},
	"health": {
		"nursing", "medicine", "pharmacy", "dentistry", "therapy", "pre-med",
		"public health", "health administration", "medical technology",
		"physical therapy", "occupational therapy",
	},
	"arts": {
		"art", "design", "music", "theater", "creative", "fine arts",
		"graphic design", "film", "photography", "creative writing",
		"digital arts",
	},
	"social_sciences": {
		"psychology", "sociology", "political science", "anthropology",
		"social work", "criminal justice", "international relations",
	},
	"education": {
		"education", "teaching", "elementary education", "special education",
		"educational leadership", "curriculum development",
	},
	"technology": {
		"information technology", "cybersecurity", "software development",
		"artificial intelligence", "machine learning", "data analytics",
	},
}
