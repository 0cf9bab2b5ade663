package owexport

// The types below mirror the renderer's exported OW repository structure.
// Field keys follow the export format, including its historical spelling of
// "bestuurlijke_genzenverwijzing".

type export struct {
	OwRepository *repository `mapstructure:"ow_repository"`
}

type repository struct {
	LocatiesContent        *locatiesContent        `mapstructure:"locaties_content"`
	DivisieContent         *divisieContent         `mapstructure:"divisie_content"`
	RegelingsgebiedContent *regelingsgebiedContent `mapstructure:"regelingsgebied_content"`
}

type locatiesContent struct {
	Gebieden       []gebied        `mapstructure:"gebieden"`
	Gebiedengroepen []gebiedenGroep `mapstructure:"gebiedengroepen"`
	Ambtsgebieden  []ambtsgebied   `mapstructure:"ambtsgebieden"`
}

type gebied struct {
	OWID    string `mapstructure:"OW_ID"`
	GeoUUID string `mapstructure:"geo_uuid"`
	Noemer  string `mapstructure:"noemer"`
}

type owReference struct {
	OWID string `mapstructure:"OW_ID"`
}

type gebiedenGroep struct {
	OWID      string        `mapstructure:"OW_ID"`
	GeoUUID   string        `mapstructure:"geo_uuid"`
	Noemer    string        `mapstructure:"noemer"`
	Locations []owReference `mapstructure:"locations"`
}

type bordersReference struct {
	BestuurlijkeGrenzenID string `mapstructure:"bestuurlijke_grenzen_id"`
	Domein                string `mapstructure:"domein"`
	GeldigOp              string `mapstructure:"geldig_op"`
}

type ambtsgebied struct {
	OWID    string           `mapstructure:"OW_ID"`
	Borders bordersReference `mapstructure:"bestuurlijke_genzenverwijzing"`
}

type divisieContent struct {
	Annotaties []annotation `mapstructure:"annotaties"`
}

type divisionPointer struct {
	OWID string `mapstructure:"OW_ID"`
	WID  string `mapstructure:"wid"`
}

type tekstdeel struct {
	OWID      string   `mapstructure:"OW_ID"`
	Divisie   string   `mapstructure:"divisie"`
	Locations []string `mapstructure:"locations"`
}

type annotation struct {
	DivisieAanduiding      *divisionPointer `mapstructure:"divisie_aanduiding"`
	DivisietekstAanduiding *divisionPointer `mapstructure:"divisietekst_aanduiding"`
	Tekstdeel              *tekstdeel       `mapstructure:"tekstdeel"`
}

type regelingsgebiedContent struct {
	Regelingsgebieden []regelingsgebied `mapstructure:"regelingsgebieden"`
}

type regelingsgebied struct {
	OWID        string `mapstructure:"OW_ID"`
	Ambtsgebied string `mapstructure:"ambtsgebied"`
}
