package normalize

// synonymTable maps a canonical IP-domain term to its surface-form
// variants, used for longest-match-first expansion in Normalize.
// Grounded on original_source/src/retrieval/query_normalizer.py's
// load_medical_synonyms.
var synonymTable = map[string][]string{
	"tracheoesophageal fistula": {
		"tef", "te fistula", "tracheo-esophageal fistula",
		"tracheo oesophageal fistula", "tracheo esophageal fistula",
		"esophagorespiratory fistula", "bronchoesophageal fistula",
		"tracheoesophageal fistulae", "t-e fistula",
	},
	"benign": {
		"nonmalignant", "non-malignant", "acquired non-malignant",
		"non malignant", "nonneoplastic", "non-neoplastic",
	},
	"malignant": {
		"neoplastic", "cancerous", "tumor-related", "cancer-related",
	},
	"stent": {
		"airway stent", "tracheal stent", "esophageal stent",
		"self-expanding metallic stent", "sems", "covered stent",
	},
	"endobronchial ultrasound": {
		"ebus", "ebus-tbna", "linear ebus", "radial ebus", "r-ebus",
	},
	"transbronchial needle aspiration": {
		"tbna", "ebus-tbna", "eus-fna", "needle aspiration",
	},
	"electromagnetic navigation bronchoscopy": {
		"enb", "em navigation", "navigational bronchoscopy",
	},
	"bronchoscopic lung volume reduction": {
		"blvr", "lung volume reduction", "valve therapy",
	},
	"chronic obstructive pulmonary disease": {
		"copd", "emphysema", "chronic bronchitis",
	},
	"photodynamic therapy": {
		"pdt", "phototherapy", "light therapy",
	},
	"argon plasma coagulation": {
		"apc", "argon coagulation", "plasma coagulation",
	},
	"foreign body": {
		"fb", "aspirated object", "inhaled object",
	},
	"massive hemoptysis": {
		"life-threatening hemoptysis", "major hemoptysis",
		"severe hemoptysis", "massive bleeding",
	},
	"closure": {
		"occlusion", "sealing", "repair", "obliteration",
	},
	"management": {
		"treatment", "therapy", "intervention", "approach",
	},
	"complications": {
		"adverse events", "adverse effects", "side effects",
	},
	"contraindications": {
		"contraindication", "absolute contraindication",
		"relative contraindication", "cautions",
	},
	"fiducial": {
		"fiducial marker", "fiducials", "marker", "gold marker",
	},
	"ablation": {
		"thermal ablation", "microwave ablation", "radiofrequency ablation",
		"rfa", "mwa", "cryoablation", "cryo",
	},
}

// baseVocabulary is the domain lexicon used for fuzzy token correction.
// Grounded on original_source/src/retrieval/query_normalizer.py's
// load_medical_vocab.
var baseVocabulary = []string{
	"tracheoesophageal", "fistula", "benign", "malignant", "stent",
	"bronchoscopy", "endobronchial", "ultrasound", "transbronchial",
	"aspiration", "biopsy", "ablation", "microwave", "radiofrequency",
	"cryotherapy", "photodynamic", "therapy", "argon", "plasma",
	"coagulation", "electromagnetic", "navigation", "fiducial",
	"marker", "hemoptysis", "pneumothorax", "emphysema", "copd",
	"asthma", "bronchiectasis", "stenosis", "stricture", "obstruction",
	"tumor", "carcinoma", "adenocarcinoma", "squamous", "metastasis",
	"lymph", "node", "mediastinal", "hilar", "peripheral", "central",
	"airway", "trachea", "bronchus", "bronchi", "esophagus", "lung",
	"pleura", "pleural", "effusion", "empyema", "thoracentesis",
	"pleurodesis", "chest", "tube", "drainage", "valve", "coil",
	"management", "treatment", "intervention", "procedure", "technique",
	"complication", "contraindication", "indication", "sedation",
	"anesthesia", "fluoroscopy", "computed", "tomography", "magnetic",
	"resonance", "imaging", "positron", "emission", "radiotherapy",
}
