package dashboard

// User-facing texts. The backend and its users are Spanish-speaking.
const (
	MsgNoServer           = "Sin conexión al servidor"
	MsgNetworkClock       = "Error de red: revisa tu conexión"
	MsgNetworkNFC         = "Error de conexión al fichar por NFC"
	MsgNetwork            = "Error de red"
	MsgSessionExpired     = "Sesión caducada. Entra de nuevo."
	MsgWelcome            = "Bienvenido. Has registrado tu entrada."
	MsgGoodbye            = "Hasta luego. Has registrado tu salida."
	MsgEnableGPS          = "Activa el GPS"
	MsgHistoryFailed      = "No se pudo cargar el historial"
	MsgFieldsRequired     = "Completa ambos campos"
	MsgPasswordTooShort   = "Mínimo 6 caracteres"
	MsgPasswordChanged    = "Contraseña actualizada"
	MsgPasswordFailed     = "Error al cambiar contraseña"
	MsgIncidenceSent      = "Solicitud enviada"
	MsgIncidencesFailed   = "No se pudieron cargar las incidencias"
	MsgNFCErrorPrefix     = "Error NFC: "
	MsgTooFar             = "Estás demasiado lejos de la oficina."
	MsgUseOfficeNFC       = "Debes fichar en el punto NFC de la entrada."
	MsgNFCUnknown         = "NFC no reconocido. Usa el punto NFC oficial."
	MsgHighAccuracyGPS    = "Activa el GPS de alta precisión para fichar."
	MsgForbidden          = "Acceso denegado."
	MsgNotFound           = "Recurso no encontrado."
	MsgServerError        = "Error del servidor. Inténtalo más tarde."
	MsgUnknownError       = "Error desconocido al fichar."
	MsgUnreadableResponse = "Error procesando la respuesta del servidor."

	DefaultReminderTitle   = "Recordatorio de fichaje"
	DefaultReminderMessage = "Te falta fichar. Revisa tu estado."

	minPasswordLen = 6
)
