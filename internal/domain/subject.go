package domain

// Subject is one question bank, stored under FolderName in the content repo.
type Subject struct {
	Key        string `koanf:"key" validate:"required"`
	FolderName string `koanf:"folder" validate:"required"`
	NameEN     string `koanf:"name_en"`
	NameZH     string `koanf:"name_zh"`
	Icon       string `koanf:"icon"`
}

// DefaultSubjects is the catalog used when the configuration does not list one.
var DefaultSubjects = []Subject{
	{Key: "bio", FolderName: "Bio & Statistics 23", NameEN: "Biostatistics & Epidemiology", NameZH: "生物统计学与流行病学", Icon: "STAT"},
	{Key: "blood", FolderName: "Blood 23", NameEN: "Hematology", NameZH: "血液学", Icon: "HEME"},
	{Key: "chest", FolderName: "Chest 23", NameEN: "Pulmonology", NameZH: "呼吸病学", Icon: "PULM"},
	{Key: "cvs", FolderName: "CVS 23", NameEN: "Cardiology", NameZH: "心脏病学", Icon: "CARD"},
	{Key: "derma", FolderName: "Derma 23", NameEN: "Dermatology", NameZH: "皮肤病学", Icon: "DERM"},
	{Key: "endo", FolderName: "Endo 23", NameEN: "Endocrinology", NameZH: "内分泌学", Icon: "ENDO"},
	{Key: "ent", FolderName: "ENT 23", NameEN: "Otolaryngology", NameZH: "耳鼻喉科学", Icon: "ENT"},
	{Key: "ethics", FolderName: "Ethics 23", NameEN: "Medical Ethics", NameZH: "医学伦理学", Icon: "ETH"},
	{Key: "git", FolderName: "GIT 23", NameEN: "Gastroenterology", NameZH: "消化病学", Icon: "GI"},
	{Key: "immunology", FolderName: "Immunology 23", NameEN: "Immunology", NameZH: "免疫学", Icon: "IMMU"},
	{Key: "micro", FolderName: "Micro 23", NameEN: "Microbiology", NameZH: "微生物学", Icon: "MICR"},
	{Key: "miscellanous", FolderName: "Miscellanous 23", NameEN: "Miscellaneous", NameZH: "其他", Icon: "MISC"},
	{Key: "neuro", FolderName: "Neuro 23", NameEN: "Neurology", NameZH: "神经病学", Icon: "NEUR"},
	{Key: "neuro24", FolderName: "Neuro 24", NameEN: "Neurology 2024", NameZH: "神经病学 2024", Icon: "NEU24"},
	{Key: "ophthalmology", FolderName: "Ophthalmology 23", NameEN: "Ophthalmology", NameZH: "眼科学", Icon: "OPHT"},
	{Key: "pathology", FolderName: "Pathology 23", NameEN: "Pathology", NameZH: "病理学", Icon: "PATH"},
	{Key: "pharma", FolderName: "Pharma 23", NameEN: "Pharmacology", NameZH: "药理学", Icon: "PHAR"},
	{Key: "pregnancy", FolderName: "Pregnancy 23", NameEN: "Obstetrics & Gynecology", NameZH: "妇产科学", Icon: "OBGY"},
	{Key: "psychiatry", FolderName: "Psychiatry 23", NameEN: "Psychiatry", NameZH: "精神病学", Icon: "PSYC"},
}

// Badge is the short label shown on the subject card.
func (s Subject) Badge() string {
	if s.Icon == "" {
		return "SUBJ"
	}
	return s.Icon
}
