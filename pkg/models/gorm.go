package models

func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&Environment{}, // Must be first - other tables reference it
		&EnvironmentState{},
		&Act{},
		&ActVersion{},
		&Bill{},
		&BillVersion{},
		&Doc{},
		&DocVersion{},
		&Purpose{},
		&Publication{},
		&PublicationVersion{},
		&PublicationVersionAttachment{},
		&StorageFile{},
		&PackageZip{},
		&ActPackage{},
		&ActPackageReport{},
		&Announcement{},
		&AnnouncementPackage{},
		&AnnouncementPackageReport{},
		&OWObject{},
		&OWAssociation{},
	}
}
