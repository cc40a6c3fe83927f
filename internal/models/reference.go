package models

// Prodi is a study program.
type Prodi struct {
	IDProdi   FlexInt `json:"id_prodi"`
	NamaProdi string  `json:"nama_prodi"`
	Jenjang   string  `json:"jenjang"`
	IDJurusan FlexInt `json:"id_jurusan"`
}

// Jurusan is the department a study program belongs to.
type Jurusan struct {
	IDJurusan   FlexInt `json:"id_jurusan"`
	NamaJurusan string  `json:"nama_jurusan"`
}

// Pegawai is a staff member; the dosen list is used to resolve academic
// advisors.
type Pegawai struct {
	IDPegawai   string `json:"id_pegawai"`
	NamaPegawai string `json:"nama_pegawai"`
}

// MataKuliah is a course from the remote course catalog.
type MataKuliah struct {
	ID                FlexInt `json:"id"`
	KodeMatakuliah    string  `json:"kode_matakuliah"`
	NamaMatakuliah    string  `json:"nama_matakuliah"`
	KodeProdi         string  `json:"kode_prodi"`
	SKS               FlexInt `json:"sks"`
	Semester          FlexInt `json:"semester"`
	KodeTahunAkademik string  `json:"kode_tahun_akademik"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
	CreatedBy         string  `json:"created_by"`
	UpdatedAt         string  `json:"updated_at"`
}

// References bundles the lookup lists used by the admin student form.
type References struct {
	Prodi   []Prodi   `json:"prodi"`
	Jurusan []Jurusan `json:"jurusan"`
	Dosen   []Pegawai `json:"dosen"`
}
