// Package allowlist suppresses and damps false-positive spans using
// static word lists and short-window context checks (spec §4.5).
package allowlist

import "regexp"

// SafeTerms are always suppressed outright, regardless of entity type.
var SafeTerms = map[string]bool{
	"today": true, "yesterday": true, "tomorrow": true, "now": true,
	"recently": true, "soon": true, "later": true, "currently": true,
	"this week": true, "last week": true, "next week": true,
	"this month": true, "last month": true, "next month": true,
	"this year": true, "last year": true, "next year": true,
	"dr. pepper": true, "dr pepper": true, "mr. clean": true, "mr clean": true,
	"mrs. butterworth": true, "mrs butterworth": true,
	"redacted": true, "removed": true, "deleted": true, "omitted": true, "withheld": true,
	"tbd": true, "tba": true, "n/a": true, "na": true, "none": true, "null": true, "blank": true,
	"unknown": true, "unspecified": true, "undetermined": true, "unavailable": true,
	"xxxxx": true, "xxxx": true, "xxx": true, "xx": true,
	"first name": true, "last name": true, "full name": true,
	"patient name": true, "provider name": true, "doctor name": true,
	"pending": true, "complete": true, "completed": true, "active": true, "inactive": true,
	"normal": true, "abnormal": true, "positive": true, "negative": true,
	"stable": true, "unstable": true, "critical": true, "guarded": true,
}

// CommonWords are suppressed only when the span is a NAME type.
var CommonWords = buildCommonWords()

func buildCommonWords() map[string]bool {
	words := []string{
		"hello", "hi", "hey", "greetings", "welcome", "goodbye", "bye",
		"good morning", "good afternoon", "good evening",
		"thanks", "thank you", "please", "sorry", "okay", "ok",
		"if", "the", "a", "an", "and", "or", "but", "so", "as", "at", "by",
		"for", "in", "of", "on", "to", "with", "from", "into", "onto", "upon",
		"about", "above", "after", "before", "below", "between", "during",
		"through", "until", "while", "since", "because", "although", "though",
		"i", "me", "my", "mine", "myself",
		"you", "your", "yours", "yourself",
		"he", "him", "his", "himself",
		"she", "her", "hers", "herself",
		"it", "its", "itself",
		"we", "us", "our", "ours", "ourselves",
		"they", "them", "their", "theirs", "themselves",
		"one", "ones", "whoever", "whatever", "whichever",
		"is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did",
		"will", "would", "could", "should", "may", "might", "must",
		"can", "shall",
		"reports", "notes", "states", "says", "advises", "recommends",
		"suggests", "indicates", "documents", "records", "orders",
		"prescribes", "diagnoses", "confirms", "denies", "describes",
		"observes", "examines", "evaluates", "assesses", "determines",
		"concludes", "believes", "thinks", "feels", "considers",
		"called", "visited", "presented", "arrived", "returned",
		"requested", "referred", "consulted", "treated", "discharged",
		"not", "no", "yes", "very", "also", "just", "only", "even",
		"still", "already", "always", "never", "often", "sometimes",
		"here", "there", "then", "now", "too",
		"rest", "pain", "improvement", "stable", "labs", "tests", "medication",
		"follow", "up", "care", "treatment", "therapy", "bed", "home",
		"work", "activity", "diet", "fluids", "sleep", "exercise",
		"who", "what", "where", "when", "why", "how", "which",
		"this", "that", "these", "those",
		"all", "any", "some", "none", "each", "every", "both", "few", "many",
		"more", "most", "other", "another", "such", "same", "different",
		"oh", "ah", "um", "uh", "hmm", "wow", "oops",
		"will", "mark", "bill", "sue", "rob", "bob", "jack", "don",
		"gene", "art", "faith", "grace", "hope", "joy", "patience",
		"charity", "crystal", "ivy", "dawn", "iris", "pearl", "ruby",
		"sandy", "violet", "hazel", "rose", "cliff", "dale", "glen",
		"heath", "lane", "lee", "max", "ray", "wade", "ward",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// FalsePositivePhrases are job titles and instruction phrases that match
// NAME_PROVIDER-style patterns but are never personal names.
var FalsePositivePhrases = map[string]bool{
	"lab director, md": true, "lab director md": true,
	"medical director, md": true, "medical director md": true,
	"clinical director, md": true, "chief of staff, md": true,
	"attending physician, md": true, "resident physician, md": true,
	"staff physician, md": true, "consulting physician, md": true,
	"department chair, md": true, "section chief, md": true,
	"program director, md": true, "nurse manager, rn": true,
	"charge nurse, rn": true, "staff nurse, rn": true,
	"clinical coordinator, rn": true, "nurse practitioner, np": true,
	"physician assistant, pa": true, "physical therapist, pt": true,
	"occupational therapist, ot": true, "respiratory therapist, rt": true,
	"pharmacist, pharmd": true, "dietitian, rd": true,
	"call to schedule": true, "call for appointment": true,
	"call to reschedule": true, "call if needed": true,
	"call if worse": true, "call if worsens": true,
	"call if symptoms worsen": true, "return if symptoms worsen": true,
	"return if worse": true, "follow up as needed": true,
	"follow up prn": true, "see as needed": true,
	"pending results": true, "to be determined": true,
	"to be scheduled": true, "not applicable": true,
	"none reported": true, "none noted": true, "not available": true,
	"see above": true, "see below": true, "as above": true,
	"as noted": true, "as discussed": true, "per protocol": true, "per routine": true,
	"referring the above": true, "the above patient": true,
	"the above named": true, "above named patient": true,
}

// ClinicalLabels are field headers (SSN, DOB, Provider, ...) the ML tier
// sometimes misclassifies as NAME entities.
var ClinicalLabels = map[string]bool{
	"ssn": true, "dob": true, "mrn": true, "npi": true, "dea": true, "phone": true, "fax": true, "email": true,
	"address": true, "zip": true, "dod": true, "dos": true, "admit": true, "discharge": true, "acct": true,
	"patient": true, "provider": true, "physician": true, "doctor": true, "nurse": true, "md": true, "do": true,
	"rn": true, "np": true, "pa": true, "ma": true, "cna": true, "lpn": true, "lvn": true, "pt": true, "ot": true, "rt": true,
	"name": true, "age": true, "sex": true, "gender": true, "race": true, "ethnicity": true,
	"marital": true, "language": true, "religion": true, "occupation": true,
	"dx": true, "hx": true, "rx": true, "tx": true, "sx": true, "pmh": true, "psh": true, "fhx": true, "shx": true,
	"cc": true, "hpi": true, "ros": true, "pe": true, "a/p": true, "plan": true, "assessment": true,
	"subjective": true, "objective": true, "allergies": true, "medications": true,
	"vitals": true, "labs": true, "imaging": true, "procedures": true, "diagnosis": true,
	"pts": true, "yo": true, "y/o": true, "m": true, "f": true, "h/o": true, "s/p": true, "w/": true, "c/o": true,
	"r/o": true, "f/u": true, "prn": true, "bid": true, "tid": true, "qid": true, "qd": true, "hs": true, "ac": true, "pc": true,
}

// MedicationFalsePositives are dosage forms and units misdetected as
// MEDICATION by the ML tier.
var MedicationFalsePositives = map[string]bool{
	"tablet": true, "tablets": true, "capsule": true, "capsules": true, "pill": true, "pills": true,
	"injection": true, "injections": true, "solution": true, "suspension": true, "syrup": true,
	"cream": true, "ointment": true, "gel": true, "patch": true, "patches": true, "spray": true,
	"inhaler": true, "drops": true, "suppository": true, "suppositories": true,
	"mg": true, "mcg": true, "ml": true, "cc": true, "unit": true, "units": true, "iu": true,
	"daily": true, "twice": true, "once": true, "oral": true, "orally": true, "topical": true, "topically": true,
	"as needed": true, "with food": true, "before meals": true, "after meals": true,
	"medication": true, "medicine": true, "drug": true, "prescription": true, "rx": true,
	"refill": true, "refills": true, "supply": true, "dose": true, "doses": true, "dosage": true,
}

// AddressFalsePositives are clinical terms misdetected as ADDRESS.
var AddressFalsePositives = map[string]bool{
	"monitoring": true, "monitoring.": true, "care": true, "health": true, "visit": true,
	"none": true, "unknown": true, "n/a": true, "na": true, "pending": true, "same": true,
}

// FacilityFalsePositives are generic facility-type words, not specific
// facility names.
var FacilityFalsePositives = map[string]bool{
	"hospital": true, "clinic": true, "medical": true, "center": true, "centre": true, "health": true,
	"healthcare": true, "facility": true, "office": true, "practice": true, "department": true,
	"emergency": true, "urgent": true, "care": true, "services": true, "system": true, "network": true,
}

// AccountFalsePositives are words incorrectly captured after
// "Account"/"Billing" labels.
var AccountFalsePositives = map[string]bool{
	"created": true, "statement": true, "status": true, "type": true, "balance": true, "due": true,
	"summary": true, "history": true, "activity": true, "information": true, "details": true,
}

// DeviceIDFalsePositives are label words captured after "Serial Number:".
var DeviceIDFalsePositives = map[string]bool{
	"number": true, "serial": true, "model": true, "lot": true, "udi": true, "device": true, "id": true,
	"none": true, "unknown": true, "n/a": true, "na": true, "pending": true,
}

// IDNumberFalsePositivePatterns match lab reference ranges and
// comparison/percentage values that aren't identifiers.
var IDNumberFalsePositivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.?\d*-\d+\.?\d*$`),
	regexp.MustCompile(`^[<>]=?\d+\.?\d*\)?$`),
	regexp.MustCompile(`^[<>]?\d+\.?\d*%\)?$`),
}

// DrugNames is a curated subset of common generic/brand drug names that
// the ML tier sometimes misclassifies as personal names.
var DrugNames = buildDrugNames()

func buildDrugNames() map[string]bool {
	words := []string{
		"abilify", "acetaminophen", "actos", "adderall", "advair", "advil", "albuterol",
		"alprazolam", "ambien", "amiodarone", "amitriptyline", "amlodipine", "amoxicillin",
		"aricept", "aspirin", "atenolol", "ativan", "atorvastatin", "azithromycin",
		"benadryl", "bupropion", "buspirone", "carvedilol", "celebrex", "celexa",
		"cephalexin", "cialis", "ciprofloxacin", "citalopram", "clindamycin", "clonazepam",
		"clonidine", "clopidogrel", "coumadin", "crestor", "cymbalta",
		"depakote", "diazepam", "digoxin", "diltiazem", "diphenhydramine", "donepezil",
		"doxycycline", "duloxetine",
		"effexor", "eliquis", "enalapril", "escitalopram", "esomeprazole",
		"famotidine", "fentanyl", "finasteride", "flexeril", "fluoxetine", "furosemide",
		"gabapentin", "glipizide", "glyburide",
		"haloperidol", "humira", "hydrochlorothiazide", "hydrocodone", "hydroxyzine",
		"ibuprofen", "insulin", "invokana",
		"januvia", "keppra", "klonopin",
		"lamotrigine", "lansoprazole", "lantus", "lasix", "latuda", "levaquin",
		"levofloxacin", "levothyroxine", "lexapro", "lidocaine", "lipitor", "lisinopril",
		"lorazepam", "losartan", "lovenox", "lyrica",
		"meloxicam", "metformin", "methadone", "methotrexate", "methylphenidate",
		"metoprolol", "metronidazole", "mirtazapine", "montelukast", "morphine", "motrin",
		"naproxen", "neurontin", "nexium", "norco", "norvasc",
		"olanzapine", "omeprazole", "ondansetron", "oxycodone", "oxycontin",
		"paroxetine", "paxil", "percocet", "phenytoin", "plavix", "pravastatin",
		"prednisone", "pregabalin", "prilosec", "prozac",
		"quetiapine",
		"ranitidine", "risperidone", "ritalin", "rosuvastatin",
		"sertraline", "simvastatin", "singulair", "spironolactone", "suboxone", "synthroid",
		"tacrolimus", "tamsulosin", "tegretol", "topamax", "topiramate", "tramadol",
		"trazodone", "tylenol",
		"valium", "valtrex", "vancomycin", "vicodin", "viagra", "vyvanse",
		"warfarin", "wellbutrin",
		"xanax", "xarelto",
		"zantac", "zithromax", "zocor", "zofran", "zoloft", "zolpidem", "zyprexa", "zyrtec",
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// MedContextPatterns indicate a medication-use context near a drug-name
// span; presence suppresses a NAME-typed drug-name span entirely.
var MedContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d+\s*mg\b`),
	regexp.MustCompile(`(?i)\b\d+\s*ml\b`),
	regexp.MustCompile(`(?i)\b\d+\s*mcg\b`),
	regexp.MustCompile(`(?i)\b\d+\s*g\b`),
	regexp.MustCompile(`(?i)\b\d+\s*iu\b`),
	regexp.MustCompile(`(?i)\b\d+\s*units?\b`),
	regexp.MustCompile(`(?i)\bdaily\b`),
	regexp.MustCompile(`(?i)\btwice\s+daily\b`),
	regexp.MustCompile(`(?i)\bb\.?i\.?d\.?\b`),
	regexp.MustCompile(`(?i)\bt\.?i\.?d\.?\b`),
	regexp.MustCompile(`(?i)\bq\.?i\.?d\.?\b`),
	regexp.MustCompile(`(?i)\bp\.?r\.?n\.?\b`),
	regexp.MustCompile(`(?i)\bonce\s+daily\b`),
	regexp.MustCompile(`(?i)\bat\s+bedtime\b`),
	regexp.MustCompile(`(?i)\bhs\b`),
	regexp.MustCompile(`(?i)\boral(ly)?\b`),
	regexp.MustCompile(`(?i)\biv\b`),
	regexp.MustCompile(`(?i)\bim\b`),
	regexp.MustCompile(`(?i)\bsubq?\b`),
	regexp.MustCompile(`(?i)\btopical(ly)?\b`),
	regexp.MustCompile(`(?i)\binhaled?\b`),
	regexp.MustCompile(`(?i)\bpo\b`),
	regexp.MustCompile(`(?i)\bprescribed\b`),
	regexp.MustCompile(`(?i)\btakes?\b`),
	regexp.MustCompile(`(?i)\btaking\b`),
	regexp.MustCompile(`(?i)\badministered\b`),
	regexp.MustCompile(`(?i)\brefill\b`),
	regexp.MustCompile(`(?i)\bstarted?\b`),
	regexp.MustCompile(`(?i)\bdiscontinued?\b`),
	regexp.MustCompile(`(?i)\btablets?\b`),
	regexp.MustCompile(`(?i)\bcapsules?\b`),
	regexp.MustCompile(`(?i)\bpills?\b`),
	regexp.MustCompile(`(?i)\bsyrup\b`),
	regexp.MustCompile(`(?i)\binjection\b`),
	regexp.MustCompile(`(?i)\bdose\b`),
	regexp.MustCompile(`(?i)\bmedication\b`),
}

// DateContext terms indicate a publishing/versioning date, not a
// patient-relevant date of birth or service.
var DateContext = map[string]bool{
	"published": true, "version": true, "copyright": true,
	"fda approved": true, "guideline from": true, "effective": true,
	"revision": true, "updated": true, "released": true,
}

// NumberContext terms indicate a reference/lot/case number, not an MRN or
// encounter/accession ID.
var NumberContext = map[string]bool{
	"room": true, "extension": true, "ext": true, "lab code": true,
	"reference": true, "ref": true, "lot": true, "batch": true,
	"invoice": true, "order": true, "case": true,
}
