package model

type Category string

const (
	CategoryGod      Category = "God"
	CategoryAesir    Category = "Aesir"
	CategoryVanir    Category = "Vanir"
	CategoryJotun    Category = "Jotun"
	CategoryAnimal   Category = "Animal"
	CategoryHero     Category = "Hero"
	CategoryValkyrie Category = "Valkyrie"
	CategoryPlace    Category = "Place"
)

func (Category) EnumValues() []string {
	return []string{"God", "Aesir", "Vanir", "Jotun", "Animal", "Hero", "Valkyrie", "Place"}
}

type Branch string

const (
	BranchNorse       Branch = "Norse"
	BranchAngloSaxon  Branch = "AngloSaxon"
	BranchContinental Branch = "Continental"
	BranchPanGermanic Branch = "PanGermanic"
)

func (Branch) EnumValues() []string {
	return []string{"Norse", "AngloSaxon", "Continental", "PanGermanic"}
}

type ContentType string

const (
	ContentTypeReconstruction       ContentType = "Reconstruction"
	ContentTypePhilosophyTheology   ContentType = "PhilosophyTheology"
	ContentTypePersonalModernPraxis ContentType = "PersonalModernPraxis"
	ContentTypeHistoricalLore       ContentType = "HistoricalLore"
)

func (ContentType) EnumValues() []string {
	return []string{"Reconstruction", "PhilosophyTheology", "PersonalModernPraxis", "HistoricalLore"}
}

type Flag string

const (
	FlagFolkist            Flag = "Folkist"
	FlagUndisclosedUPG     Flag = "UndisclosedUPG"
	FlagCreatorControversy Flag = "CreatorControversy"
)

func (Flag) EnumValues() []string {
	return []string{"Folkist", "UndisclosedUPG", "CreatorControversy"}
}

type Format string

const (
	FormatPaperback   Format = "Paperback"
	FormatHardcover   Format = "Hardcover"
	FormatEbook       Format = "Ebook"
	FormatWebsiteBlog Format = "WebsiteBlog"
	FormatVideo       Format = "Video"
	FormatAudiobook   Format = "Audiobook"
)

func (Format) EnumValues() []string {
	return []string{"Paperback", "Hardcover", "Ebook", "WebsiteBlog", "Video", "Audiobook"}
}

type Subject string

const (
	SubjectAfterlife        Subject = "Afterlife"
	SubjectLuck             Subject = "Luck"
	SubjectAncestors        Subject = "Ancestors"
	SubjectOaths            Subject = "Oaths"
	SubjectValkyries        Subject = "Valkyries"
	SubjectBurialPractices  Subject = "BurialPractices"
	SubjectMagic            Subject = "Magic"
	SubjectJotun            Subject = "Jotun"
	SubjectFemaleViking     Subject = "FemaleViking"
	SubjectMythicalCreature Subject = "MythicalCreature"
)

func (Subject) EnumValues() []string {
	return []string{
		"Afterlife", "Luck", "Ancestors", "Oaths", "Valkyries",
		"BurialPractices", "Magic", "Jotun", "FemaleViking", "MythicalCreature",
	}
}

type RelationshipType string

const (
	RelationshipTypeSpouse  RelationshipType = "Spouse"
	RelationshipTypeSibling RelationshipType = "Sibling"
	RelationshipTypeChild   RelationshipType = "Child"
	RelationshipTypeByName  RelationshipType = "ByName"
	RelationshipTypeCognate RelationshipType = "Cognate"
	RelationshipTypeEnemy   RelationshipType = "Enemy"
)

func (RelationshipType) EnumValues() []string {
	return []string{"Spouse", "Sibling", "Child", "ByName", "Cognate", "Enemy"}
}

// Enums lists the value names of every enum type, keyed by the route name
// they are served under.
func Enums() map[string][]string {
	return map[string][]string{
		"categories":         Category("").EnumValues(),
		"branches":           Branch("").EnumValues(),
		"content-types":      ContentType("").EnumValues(),
		"flags":              Flag("").EnumValues(),
		"formats":            Format("").EnumValues(),
		"subjects":           Subject("").EnumValues(),
		"relationship-types": RelationshipType("").EnumValues(),
	}
}
