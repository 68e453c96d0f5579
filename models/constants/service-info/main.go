package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "Denovo Enhancer Calling Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the Denovo de novo enhancer calling API!"
	SERVICE_DESCRIPTION ServiceInfo = "Denovo regulatory enhancer calling service for predicted molecular-assay signal tracks."
	SERVICE_CONTACT     ServiceInfo = "mailto:devs@denovo.bio"

	SERVICE_ARTIFACT    ServiceInfo = "denovo"
	SERVICE_VERSION     ServiceInfo = "0.0.1"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("bio.denovo:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
