package config

import (
	"os"
	"text/template"
)

const SurferConfigTemplate = `node = "{{ .Node }}"
chain_id = "{{ .ChainID }}"
address_prefix = "{{ .AddressPrefix }}"
tx_expiration = {{ .TxExpiration }}
rpc_timeout = {{ .RpcTimeout }}

steemconnect_url = "{{ .SteemConnectUrl }}"
hot_signing_redirect = "{{ .HotSigningRedirect }}"
backend_url = "{{ .BackendUrl }}"
app_account = "{{ .AppAccount }}"
activity_timeout = {{ .ActivityTimeout }}

max_pin_tries = {{ .MaxPinTries }}

db_driver = "{{ .DbDriver }}"
db_host = "{{ .DbHost }}"
db_port = {{ .DbPort }}
db_username = "{{ .DbUsername }}"
db_password = "{{ .DbPassword }}"
db_schema = "{{ .DbSchema }}"
db_path = "{{ .DbPath }}"
in_memory = {{ .InMemory }}

server_port = {{ .ServerPort }}
`

// WriteConfigFile renders cfg into a toml file at path.
func WriteConfigFile(path string, cfg *Surfer) error {
	tmpl, err := template.New("surfer").Parse(SurferConfigTemplate)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, cfg)
}
