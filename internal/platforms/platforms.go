// Package platforms is the static directory of learning platforms exposed
// at /api/platforms/. cost_model is a quick guide, not a contractual
// statement: "freemium" means some content free with paid certs/paths,
// "mixed" means both free and paid products exist. OffersCertificates
// means the platform issues some form of certificate, badge or completion
// record (often paid on freemium sites).
package platforms

import (
	"net/url"
	"strings"
)

type Platform struct {
	Name               string `json:"name"`
	Category           string `json:"category"`
	Description        string `json:"description"`
	CostModel          string `json:"cost_model"`
	OffersCertificates bool   `json:"offers_certificates"`
	Home               string `json:"home"`
	searchTemplate     string
}

// Result is a directory row with the search link resolved for a query.
type Result struct {
	Name               string `json:"name"`
	Category           string `json:"category"`
	Description        string `json:"description"`
	CostModel          string `json:"cost_model"`
	OffersCertificates bool   `json:"offers_certificates"`
	Home               string `json:"home"`
	SearchURL          string `json:"search_url"`
}

// Search filters the directory and builds per-platform search URLs. With an
// empty query the search URL falls back to the platform home page. cost
// filters by cost model; certs accepts yes/true/1 and no/false/0.
func Search(query, cost, certs string) []Result {
	cost = strings.ToLower(strings.TrimSpace(cost))
	certs = strings.ToLower(strings.TrimSpace(certs))
	query = strings.TrimSpace(query)

	out := make([]Result, 0, len(directory))
	for _, p := range directory {
		if cost != "" && p.CostModel != cost {
			continue
		}
		switch certs {
		case "yes", "true", "1":
			if !p.OffersCertificates {
				continue
			}
		case "no", "false", "0":
			if p.OffersCertificates {
				continue
			}
		}

		searchURL := p.Home
		if query != "" {
			searchURL = strings.ReplaceAll(p.searchTemplate, "{q}", url.QueryEscape(query))
		}

		out = append(out, Result{
			Name:               p.Name,
			Category:           p.Category,
			Description:        p.Description,
			CostModel:          p.CostModel,
			OffersCertificates: p.OffersCertificates,
			Home:               p.Home,
			SearchURL:          searchURL,
		})
	}
	return out
}

var directory = []Platform{
	{
		Name:               "Class Central",
		Home:               "https://www.classcentral.com/",
		searchTemplate:     "https://www.classcentral.com/search?q={q}",
		Category:           "Aggregator",
		Description:        "Search engine for online courses across many providers.",
		CostModel:          "free",
		OffersCertificates: false,
	},
	{
		Name:               "freeCodeCamp",
		Home:               "https://www.freecodecamp.org/",
		searchTemplate:     "https://www.freecodecamp.org/learn/?q={q}",
		Category:           "Nonprofit / Web Dev",
		Description:        "Fully free coding curriculum with project-based certifications.",
		CostModel:          "free",
		OffersCertificates: true,
	},
	{
		Name:               "Khan Academy",
		Home:               "https://www.khanacademy.org/",
		searchTemplate:     "https://www.khanacademy.org/search?page_search_query={q}",
		Category:           "Nonprofit / K-12 to College",
		Description:        "Free learning for math, science, computing, and more.",
		CostModel:          "free",
		OffersCertificates: false,
	},
	{
		Name:               "Saylor Academy",
		Home:               "https://www.saylor.org/",
		searchTemplate:     "https://www.saylor.org/?s={q}",
		Category:           "Nonprofit / College",
		Description:        "Free self-paced college-level courses; low-cost exams and certs.",
		CostModel:          "free",
		OffersCertificates: true,
	},
	{
		Name:               "Alison",
		Home:               "https://alison.com/",
		searchTemplate:     "https://alison.com/search/results?query={q}",
		Category:           "MOOC",
		Description:        "Large catalog of free courses; optional paid certificates.",
		CostModel:          "freemium",
		OffersCertificates: true,
	},
	{
		Name:               "Coursera",
		Home:               "https://www.coursera.org/",
		searchTemplate:     "https://www.coursera.org/search?query={q}",
		Category:           "MOOC / University",
		Description:        "University-backed courses and professional certificates.",
		CostModel:          "mixed",
		OffersCertificates: true,
	},
	{
		Name:               "edX",
		Home:               "https://www.edx.org/",
		searchTemplate:     "https://www.edx.org/search?q={q}",
		Category:           "MOOC / University",
		Description:        "Courses from universities; MicroBachelors/MicroMasters.",
		CostModel:          "mixed",
		OffersCertificates: true,
	},
	{
		Name:               "FutureLearn",
		Home:               "https://www.futurelearn.com/",
		searchTemplate:     "https://www.futurelearn.com/courses?query={q}",
		Category:           "MOOC",
		Description:        "Short courses and ExpertTracks from universities/organizations.",
		CostModel:          "freemium",
		OffersCertificates: true,
	},
	{
		Name:               "Udemy",
		Home:               "https://www.udemy.com/",
		searchTemplate:     "https://www.udemy.com/courses/search/?q={q}",
		Category:           "Marketplace",
		Description:        "Instructor-created courses across all topics; frequent discounts.",
		CostModel:          "paid",
		OffersCertificates: true,
	},
	{
		Name:               "Udacity",
		Home:               "https://www.udacity.com/",
		searchTemplate:     "https://www.udacity.com/courses/all?search={q}",
		Category:           "Tech / Nanodegrees",
		Description:        "Career-focused Nanodegree programs in tech fields.",
		CostModel:          "paid",
		OffersCertificates: true,
	},
	{
		Name:               "Pluralsight",
		Home:               "https://www.pluralsight.com/",
		searchTemplate:     "https://www.pluralsight.com/search?q={q}",
		Category:           "Tech",
		Description:        "Tech skills with paths and assessments; strong cert-prep.",
		CostModel:          "subscription",
		OffersCertificates: true,
	},
	{
		Name:               "Codecademy",
		Home:               "https://www.codecademy.com/",
		searchTemplate:     "https://www.codecademy.com/search?query={q}",
		Category:           "Tech",
		Description:        "Interactive coding lessons; Pro offers paths/certificates.",
		CostModel:          "freemium",
		OffersCertificates: true,
	},
	{
		Name:               "LinkedIn Learning",
		Home:               "https://www.linkedin.com/learning/",
		searchTemplate:     "https://www.linkedin.com/learning/search?keywords={q}",
		Category:           "Professional",
		Description:        "Business, creative, and tech courses; add certs to profile.",
		CostModel:          "subscription",
		OffersCertificates: true,
	},
	{
		Name:               "Skillshare",
		Home:               "https://www.skillshare.com/",
		searchTemplate:     "https://www.skillshare.com/search?query={q}",
		Category:           "Creative / Marketplace",
		Description:        "Creative and practical classes by creators.",
		CostModel:          "subscription",
		OffersCertificates: false,
	},
	{
		Name:               "DataCamp",
		Home:               "https://www.datacamp.com/",
		searchTemplate:     "https://www.datacamp.com/search?q={q}",
		Category:           "Data",
		Description:        "Interactive data science and analytics learning.",
		CostModel:          "subscription",
		OffersCertificates: true,
	},
	{
		Name:               "Google Cloud Skills Boost",
		Home:               "https://www.cloudskillsboost.google/",
		searchTemplate:     "https://www.cloudskillsboost.google/catalog?search={q}",
		Category:           "Vendor / Cloud",
		Description:        "Hands-on labs and quests for Google Cloud; cert-prep.",
		CostModel:          "mixed",
		OffersCertificates: true,
	},
	{
		Name:               "Microsoft Learn",
		Home:               "https://learn.microsoft.com/",
		searchTemplate:     "https://learn.microsoft.com/search/?terms={q}",
		Category:           "Vendor / Cloud",
		Description:        "Free learning paths with badges; Microsoft cert-prep.",
		CostModel:          "free",
		OffersCertificates: true,
	},
	{
		Name:               "AWS Training & Certification",
		Home:               "https://www.aws.training/",
		searchTemplate:     "https://www.aws.training/Details/Curriculum?id=20685#?phrase={q}",
		Category:           "Vendor / Cloud",
		Description:        "Official AWS digital training; strong certification paths.",
		CostModel:          "mixed",
		OffersCertificates: true,
	},
	{
		Name:               "IBM SkillsBuild",
		Home:               "https://skillsbuild.org/",
		searchTemplate:     "https://skillsbuild.org/search?q={q}",
		Category:           "Vendor / Career",
		Description:        "Free job-aligned learning with badges from IBM.",
		CostModel:          "free",
		OffersCertificates: true,
	},
	{
		Name:               "MIT OpenCourseWare",
		Home:               "https://ocw.mit.edu/",
		searchTemplate:     "https://ocw.mit.edu/search/?q={q}",
		Category:           "University / Open",
		Description:        "Free MIT course materials; no enrollment or certs.",
		CostModel:          "free",
		OffersCertificates: false,
	},
	{
		Name:               "Stanford Online",
		Home:               "https://online.stanford.edu/",
		searchTemplate:     "https://online.stanford.edu/search?search={q}",
		Category:           "University",
		Description:        "Professional education and free/open content from Stanford.",
		CostModel:          "mixed",
		OffersCertificates: true,
	},
	{
		Name:               "OpenClassrooms",
		Home:               "https://openclassrooms.com/",
		searchTemplate:     "https://openclassrooms.com/en/search?q={q}",
		Category:           "Career / Mentor-guided",
		Description:        "Mentor-guided paths with job-ready projects and diplomas.",
		CostModel:          "subscription",
		OffersCertificates: true,
	},
}
