package dto

type AlergenoResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type UnidadResponse struct {
	ID             string `json:"id"`
	Nombre         string `json:"nombre"`
	Abreviatura    string `json:"abreviatura"`
	SinEspecificar bool   `json:"sin_especificar"`
}

type CrearTipoRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=60"`
}

type RenombrarTipoRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=60"`
}

type TipoResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}
