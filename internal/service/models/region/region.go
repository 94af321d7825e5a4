package region

// Count is the number of wilayas deliverable to.
const Count = 58

// Region is an Algerian wilaya. The set is static reference data.
type Region struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var wilayas = [Count]Region{
	{1, "Adrar"}, {2, "Chlef"}, {3, "Laghouat"}, {4, "Oum El Bouaghi"},
	{5, "Batna"}, {6, "Béjaïa"}, {7, "Biskra"}, {8, "Béchar"},
	{9, "Blida"}, {10, "Bouira"}, {11, "Tamanrasset"}, {12, "Tébessa"},
	{13, "Tlemcen"}, {14, "Tiaret"}, {15, "Tizi Ouzou"}, {16, "Alger"},
	{17, "Djelfa"}, {18, "Jijel"}, {19, "Sétif"}, {20, "Saïda"},
	{21, "Skikda"}, {22, "Sidi Bel Abbès"}, {23, "Annaba"}, {24, "Guelma"},
	{25, "Constantine"}, {26, "Médéa"}, {27, "Mostaganem"}, {28, "M'Sila"},
	{29, "Mascara"}, {30, "Ouargla"}, {31, "Oran"}, {32, "El Bayadh"},
	{33, "Illizi"}, {34, "Bordj Bou Arréridj"}, {35, "Boumerdès"}, {36, "El Tarf"},
	{37, "Tindouf"}, {38, "Tissemsilt"}, {39, "El Oued"}, {40, "Khenchela"},
	{41, "Souk Ahras"}, {42, "Tipaza"}, {43, "Mila"}, {44, "Aïn Defla"},
	{45, "Naâma"}, {46, "Aïn Témouchent"}, {47, "Ghardaïa"}, {48, "Relizane"},
	{49, "El M'Ghair"}, {50, "El Meniaa"}, {51, "Ouled Djellal"}, {52, "Bordj Badji Mokhtar"},
	{53, "Béni Abbès"}, {54, "Timimoun"}, {55, "Touggourt"}, {56, "Djanet"},
	{57, "In Salah"}, {58, "In Guezzam"},
}

// All returns every region ordered by id.
func All() []Region {
	out := make([]Region, Count)
	copy(out, wilayas[:])

	return out
}

// Valid reports whether id names a wilaya.
func Valid(id int) bool {
	return id >= 1 && id <= Count
}

// Lookup returns the region with the given id.
func Lookup(id int) (Region, bool) {
	if !Valid(id) {
		return Region{}, false
	}

	return wilayas[id-1], true
}
