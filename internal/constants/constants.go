package constants

//ProjectID Default GCP project.
const ProjectID = "habitflow-prod"

//CollectionUsers Name of the collection.
const CollectionUsers = "users"

//CollectionRoutineLogs Name of the per-user subcollection with routine logs.
const CollectionRoutineLogs = "routineLogs"

//CollectionMissions Name of the per-user subcollection with daily missions.
const CollectionMissions = "missions"

//TopicJobReports Name of the topic with job run summaries.
const TopicJobReports = "job-reports"

//SecretSchedulerAPIKey Name of the secret with the scheduler api key.
const SecretSchedulerAPIKey = "scheduler-apikey"

//DateFormat Calendar date format used as the routine log join key.
const DateFormat = "2006-01-02"
