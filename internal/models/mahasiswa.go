package models

// Mahasiswa is the remote student record served by the portal host.
type Mahasiswa struct {
	NIM           string   `json:"nim" validate:"required,max=20"`
	Nama          string   `json:"nama" validate:"required,max=150"`
	Email         string   `json:"email" validate:"required,email"`
	NomorHP       string   `json:"nomor_hp" validate:"omitempty,max=20"`
	TempatLahir   string   `json:"tempat_lahir"`
	TanggalLahir  string   `json:"tanggal_lahir" validate:"omitempty,datetime=2006-01-02"`
	AlamatLengkap string   `json:"alamat_lengkap"`
	Image         *string  `json:"image"`
	IDProdi       *FlexInt `json:"id_prodi"`
	IDPegawai     *string  `json:"id_pegawai"`
	TahunMasuk    FlexInt  `json:"tahun_masuk" validate:"required,gte=1900,lte=2100"`
	IDJK          *FlexInt `json:"id_jk"`
	IDAgama       *FlexInt `json:"id_agama"`
	IDKabupaten   *string  `json:"id_kabupaten"`
	IDKelas       *string  `json:"id_kelas"`
}

// MahasiswaFilter selects a page of the admin student list.
type MahasiswaFilter struct {
	Search   string
	Page     int
	PageSize int
}

// MutationResult carries the message returned by the portal host after a
// create, update or delete.
type MutationResult struct {
	Message string `json:"message"`
}
