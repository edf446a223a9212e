package notification

import "html/template"

const footer = `<br/><p><strong>Nota:</strong> Este es un correo generado automáticamente. Por favor, no responder.</p>`

var successTmpl = template.Must(template.New("success").Parse(
	`<p>El proceso de sincronización de arrendamientos ha finalizado con éxito.</p>` +
		`<p>Se adjuntan los reportes de morosidad e inactivos.</p>` + footer))

var noDelinquencyTmpl = template.Must(template.New("no-delinquency").Parse(
	`<p>El proceso de sincronización de arrendamientos ha finalizado con éxito.</p>` +
		`<p>No se encontraron comercios con morosidad en el período actual.</p>` +
		`<p>Se adjunta el reporte de comercios inactivos.</p>` + footer))

var simpleErrorTmpl = template.Must(template.New("error-simple").Parse(
	`<p>El servicio de sincronización ha fallado.</p><p><strong>Mensaje:</strong> {{.Message}}</p>` + footer))

const cell = `border: 1px solid #ddd; padding: 8px;`

var detailedErrorTmpl = template.Must(template.New("error-detailed").Parse(`<h2>ERROR EN SISTEMA</h2>
<p>Se ha detectado un error que requiere atención.</p>
<br/>
<h3>Detalles:</h3>
<table style="border-collapse: collapse; width: 100%; margin: 10px 0;">
<tr style="background-color: #f8f9fa;"><td style="` + cell + ` font-weight: bold; width: 150px;">Sistema:</td><td style="` + cell + `">{{.System}}</td></tr>
<tr><td style="` + cell + ` font-weight: bold;">Usuario:</td><td style="` + cell + `">{{.User}}</td></tr>
<tr style="background-color: #f8f9fa;"><td style="` + cell + ` font-weight: bold;">Función:</td><td style="` + cell + `">{{.Function}}</td></tr>
<tr><td style="` + cell + ` font-weight: bold;">Fecha:</td><td style="` + cell + `">{{.Timestamp.Format "02/01/2006 15:04:05"}}</td></tr>
</table>
<br/>
<h3>Excepción:</h3>
<div style="background-color: #f8d7da; border: 1px solid #f5c6cb; padding: 10px; border-radius: 4px;"><pre style="margin: 0; white-space: pre-wrap;">{{.Message}}</pre></div>
{{- if .Trace}}
<br/>
<h3>Stack Trace:</h3>
<div style="background-color: #e2e3e5; border: 1px solid #d6d8db; padding: 10px; border-radius: 4px; font-family: monospace; font-size: 12px;"><pre style="margin: 0; white-space: pre-wrap;">{{.Trace}}</pre></div>
{{- end}}
{{- if .Extra}}
<br/>
<h3>Información Adicional:</h3>
<div style="background-color: #d1ecf1; border: 1px solid #bee5eb; padding: 10px; border-radius: 4px;"><pre style="margin: 0; white-space: pre-wrap;">{{.Extra}}</pre></div>
{{- end}}
` + footer))
